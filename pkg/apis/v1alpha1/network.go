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
	"github.com/aws/aws-sdk-go/aws"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

type NetworkSpec struct {
	// NumberOfAvailabilityZones is how many zones get a data-plane subnet.
	// +optional
	NumberOfAvailabilityZones *int64 `json:"numberOfAvailabilityZones,omitempty"`
	// UsePrivateSubnets isolates the data-plane subnets from inbound
	// internet traffic; outbound egress goes through per-zone NAT gateways.
	// +optional
	UsePrivateSubnets *bool `json:"usePrivateSubnets,omitempty"`
	// VPCID, when set, selects the adoption path: every resource below must
	// already exist and nothing is created.
	// +optional
	VPCID *string `json:"vpcID,omitempty"`
	// +optional
	SubnetIDs []string `json:"subnetIDs,omitempty"`
	// +optional
	SecurityGroupIDs []string `json:"securityGroupIDs,omitempty"`
	// +optional
	PublicSubnetIDs []string `json:"publicSubnetIDs,omitempty"`
}

type InfrastructureStatus struct {
	VPCID              *string  `json:"vpcID,omitempty"`
	InternetGatewayID  *string  `json:"internetGatewayID,omitempty"`
	PublicRouteTableID *string  `json:"publicRouteTableID,omitempty"`
	SecurityGroupIDs   []string `json:"securityGroupIDs,omitempty"`
	// Zone-indexed slices, slot i belongs to availability zone i. A nil
	// slice means the owning resource has not resolved yet.
	SubnetIDs               []*string `json:"subnetIDs,omitempty"`
	PublicSubnetIDs         []*string `json:"publicSubnetIDs,omitempty"`
	NatSubnetAssociationIDs []*string `json:"natSubnetAssociationIDs,omitempty"`
	ElasticIPIDs            []*string `json:"elasticIPIDs,omitempty"`
	NatGatewayIDs           []*string `json:"natGatewayIDs,omitempty"`
	PrivateRouteTableIDs    []*string `json:"privateRouteTableIDs,omitempty"`
}

type NetworkStatus struct {
	Infrastructure InfrastructureStatus `json:"infrastructure,omitempty"`
	// Fingerprint is a hash of the spec, stamped on every created resource.
	Fingerprint *string `json:"fingerprint,omitempty"`
}

// Network is the Schema for the Networks API
// +kubebuilder:object:root=true
// +kubebuilder:resource:path=networks,scope=Cluster
// +kubebuilder:subresource:status
type Network struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   NetworkSpec   `json:"spec,omitempty"`
	Status NetworkStatus `json:"status,omitempty"`
}

// Adoption reports whether the spec binds to an existing VPC instead of
// requesting a new one.
func (s *NetworkSpec) Adoption() bool {
	return s.VPCID != nil
}

// Zones is the defaulted availability zone count.
func (s *NetworkSpec) Zones() int {
	return int(aws.Int64Value(s.NumberOfAvailabilityZones))
}

// Private is the defaulted private-subnet flag.
func (s *NetworkSpec) Private() bool {
	return aws.BoolValue(s.UsePrivateSubnets)
}

// VPC returns the finished topology's VPC id.
func (n *Network) VPC() string {
	return aws.StringValue(n.Status.Infrastructure.VPCID)
}

// SubnetIDs returns the finished data-plane subnet ids in zone-index order.
func (n *Network) SubnetIDs() []string {
	return aws.StringValueSlice(n.Status.Infrastructure.SubnetIDs)
}

// PublicSubnetIDs returns the subnets with a direct internet route. For
// public topologies this equals SubnetIDs; for private ones it holds the
// NAT-facing subnets.
func (n *Network) PublicSubnetIDs() []string {
	return aws.StringValueSlice(n.Status.Infrastructure.PublicSubnetIDs)
}

// SecurityGroupIDs returns the finished topology's security groups.
func (n *Network) SecurityGroupIDs() []string {
	return n.Status.Infrastructure.SecurityGroupIDs
}
