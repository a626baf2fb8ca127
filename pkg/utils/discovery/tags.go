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

package discovery

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/mitchellh/hashstructure/v2"
	"github.com/netkit-sh/netkit/pkg/apis/v1alpha1"
)

const (
	OwnerTagKey       = "netkit.sh/network"
	FingerprintTagKey = "netkit.sh/fingerprint"
)

// Fingerprint hashes the spec so created resources can be matched back to the
// exact topology request that produced them.
func Fingerprint(network *v1alpha1.Network) (string, error) {
	hash, err := hashstructure.Hash(network.Spec, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("hashing network spec, %w", err)
	}
	return fmt.Sprintf("%016x", hash), nil
}

func Tags(network *v1alpha1.Network, resourceType string, name *string) []*ec2.TagSpecification {
	tags := []*ec2.Tag{
		{Key: aws.String(OwnerTagKey), Value: aws.String(network.Name)},
		{Key: aws.String("Name"), Value: name},
	}
	if network.Status.Fingerprint != nil {
		tags = append(tags, &ec2.Tag{Key: aws.String(FingerprintTagKey), Value: network.Status.Fingerprint})
	}
	return []*ec2.TagSpecification{{ResourceType: aws.String(resourceType), Tags: tags}}
}

func Filters(network *v1alpha1.Network, optionalName ...*string) (filters []*ec2.Filter) {
	if len(optionalName) > 1 {
		panic("name cannot have more than one value")
	}
	filters = append(filters, &ec2.Filter{Name: aws.String(fmt.Sprintf("tag:%s", OwnerTagKey)), Values: []*string{aws.String(network.Name)}})
	if len(optionalName) > 0 {
		filters = append(filters, &ec2.Filter{Name: aws.String(fmt.Sprintf("tag:%s", "Name")), Values: optionalName})
	}
	return filters
}
