// This file is part of rerecord.
//
// rerecord is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// rerecord is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with rerecord.  If not, see <https://www.gnu.org/licenses/>.

// Package controllermap implements the controller mapping layer (C9):
// stable logical controller IDs independent of the current port
// configuration, plus the autohold/autofire XOR composition of §4.8.
package controllermap

import "github.com/jetsetilly/rerecord/movie/ports"

type physSlot struct {
	port       int
	controller int
}

// Mapping assigns a dense sequence of logical controller IDs to the
// physical (port, controller) slots implied by a (port1, port2) pair,
// per spec.md §4.8's ordering policy.
type Mapping struct {
	port1, port2 ports.PortType
	slots        []physSlot
}

// New builds the logical-ID ordering for a given port configuration.
// Port 1's devices come first, then port 2's — except that when port 1
// is a multitap, its first device is logical 0, port 2's devices (if
// any) follow immediately, and the multitap's remaining three devices
// come last (spec.md §4.8).
func New(port1, port2 ports.PortType) *Mapping {
	m := &Mapping{port1: port1, port2: port2}

	info1, _, _ := ports.Lookup(port1)
	info2, _, _ := ports.Lookup(port2)

	if port1 == ports.MULTITAP && info1.DeviceCount > 0 {
		m.slots = append(m.slots, physSlot{0, 0})
		for c := 0; c < info2.DeviceCount; c++ {
			m.slots = append(m.slots, physSlot{1, c})
		}
		for c := 1; c < info1.DeviceCount; c++ {
			m.slots = append(m.slots, physSlot{0, c})
		}
		return m
	}

	for c := 0; c < info1.DeviceCount; c++ {
		m.slots = append(m.slots, physSlot{0, c})
	}
	for c := 0; c < info2.DeviceCount; c++ {
		m.slots = append(m.slots, physSlot{1, c})
	}
	return m
}

// PhysicalOfLogical returns the (port, controller-in-port) physical slot
// for a logical ID, or ok=false if lid is out of range ("none").
func (m *Mapping) PhysicalOfLogical(lid int) (port, controller int, ok bool) {
	if lid < 0 || lid >= len(m.slots) {
		return 0, 0, false
	}
	s := m.slots[lid]
	return s.port, s.controller, true
}

func (m *Mapping) portType(port int) ports.PortType {
	if port == 0 {
		return m.port1
	}
	return m.port2
}

// DeviceTypeOfLogical returns the device kind occupying a logical ID, or
// ports.DeviceNone if lid is out of range.
func (m *Mapping) DeviceTypeOfLogical(lid int) ports.DeviceKind {
	port, controller, ok := m.PhysicalOfLogical(lid)
	if !ok {
		return ports.DeviceNone
	}
	info, _, found := ports.Lookup(m.portType(port))
	if !found {
		return ports.DeviceNone
	}
	return info.Devices[controller]
}

// AnalogSlots enumerates up to three logical controller IDs whose device
// is a mouse, superscope or justifier, in logical-ID order.
func (m *Mapping) AnalogSlots() []int {
	var out []int
	for lid := 0; lid < len(m.slots) && len(out) < 3; lid++ {
		switch m.DeviceTypeOfLogical(lid) {
		case ports.DeviceMouse, ports.DeviceScope, ports.DeviceJustifier:
			out = append(out, lid)
		}
	}
	return out
}

// AnalogIsMouse distinguishes a mouse (origin-relative motion) from a
// scope or justifier (absolute-positioned) at a logical slot returned by
// AnalogSlots.
func (m *Mapping) AnalogIsMouse(lid int) bool {
	return m.DeviceTypeOfLogical(lid) == ports.DeviceMouse
}
