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

package v1alpha1

import (
	"context"

	"knative.dev/pkg/apis"
)

func (n *Network) Validate(ctx context.Context) (errs *apis.FieldError) {
	if len(n.Name) == 0 {
		return errs.Also(apis.ErrMissingField("name"))
	}
	if n.Spec.Adoption() {
		return n.Spec.validateAdoption()
	}
	return n.Spec.validateConstruction()
}

// validateAdoption requires every adopted resource list to be supplied. A nil
// slice is absent; checks stop at the first missing field.
func (s *NetworkSpec) validateAdoption() *apis.FieldError {
	if s.SubnetIDs == nil {
		return apis.ErrMissingField("subnetIDs")
	}
	if s.SecurityGroupIDs == nil {
		return apis.ErrMissingField("securityGroupIDs")
	}
	if s.PublicSubnetIDs == nil {
		return apis.ErrMissingField("publicSubnetIDs")
	}
	return nil
}

func (s *NetworkSpec) validateConstruction() *apis.FieldError {
	if zones := s.Zones(); zones < 1 || zones >= 4 {
		return apis.ErrInvalidValue(zones, "numberOfAvailabilityZones")
	}
	return nil
}
