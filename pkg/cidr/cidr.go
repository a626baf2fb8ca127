/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package cidr carves per-zone address blocks out of the fixed network
// prefix. Allocation is a pure function of the zone index, so re-running a
// provisioning pass always produces the same blocks.
package cidr

import (
	"errors"
	"fmt"
)

// Network is the address space every topology is carved from.
const Network = "10.10.0.0/16"

// natOffset shifts NAT-facing blocks into the upper half of the /16 so they
// can never collide with a primary block for any supported zone count.
const natOffset = 64

var ErrExhausted = errors.New("address space exhausted")

// Primary returns the data-plane subnet block for the given zone index.
func Primary(zone int) (string, error) {
	if zone < 0 || zone >= natOffset {
		return "", fmt.Errorf("allocating primary block for zone %d, %w", zone, ErrExhausted)
	}
	return fmt.Sprintf("10.10.%d.0/24", zone), nil
}

// NAT returns the NAT-facing subnet block for the given zone index.
func NAT(zone int) (string, error) {
	if zone < 0 || zone >= natOffset {
		return "", fmt.Errorf("allocating NAT block for zone %d, %w", zone, ErrExhausted)
	}
	return fmt.Sprintf("10.10.%d.0/24", zone+natOffset), nil
}
