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
)

func (in *Network) DeepCopy() *Network {
	if in == nil {
		return nil
	}
	out := &Network{TypeMeta: in.TypeMeta}
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
	in.Status.DeepCopyInto(&out.Status)
	return out
}

func (in *NetworkSpec) DeepCopy() *NetworkSpec {
	if in == nil {
		return nil
	}
	out := &NetworkSpec{}
	in.DeepCopyInto(out)
	return out
}

func (in *NetworkSpec) DeepCopyInto(out *NetworkSpec) {
	out.NumberOfAvailabilityZones = copyInt64(in.NumberOfAvailabilityZones)
	out.UsePrivateSubnets = copyBool(in.UsePrivateSubnets)
	out.VPCID = copyString(in.VPCID)
	out.SubnetIDs = copyStrings(in.SubnetIDs)
	out.SecurityGroupIDs = copyStrings(in.SecurityGroupIDs)
	out.PublicSubnetIDs = copyStrings(in.PublicSubnetIDs)
}

func (in *NetworkStatus) DeepCopyInto(out *NetworkStatus) {
	out.Fingerprint = copyString(in.Fingerprint)
	out.Infrastructure = InfrastructureStatus{
		VPCID:                   copyString(in.Infrastructure.VPCID),
		InternetGatewayID:       copyString(in.Infrastructure.InternetGatewayID),
		PublicRouteTableID:      copyString(in.Infrastructure.PublicRouteTableID),
		SecurityGroupIDs:        copyStrings(in.Infrastructure.SecurityGroupIDs),
		SubnetIDs:               copyStringPtrs(in.Infrastructure.SubnetIDs),
		PublicSubnetIDs:         copyStringPtrs(in.Infrastructure.PublicSubnetIDs),
		NatSubnetAssociationIDs: copyStringPtrs(in.Infrastructure.NatSubnetAssociationIDs),
		ElasticIPIDs:            copyStringPtrs(in.Infrastructure.ElasticIPIDs),
		NatGatewayIDs:           copyStringPtrs(in.Infrastructure.NatGatewayIDs),
		PrivateRouteTableIDs:    copyStringPtrs(in.Infrastructure.PrivateRouteTableIDs),
	}
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	return aws.String(*s)
}

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	return aws.Bool(*b)
}

func copyInt64(i *int64) *int64 {
	if i == nil {
		return nil
	}
	return aws.Int64(*i)
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func copyStringPtrs(s []*string) []*string {
	if s == nil {
		return nil
	}
	out := make([]*string, len(s))
	for i := range s {
		out[i] = copyString(s[i])
	}
	return out
}
