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

package network

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/netkit-sh/netkit/pkg/apis/v1alpha1"
	"github.com/netkit-sh/netkit/pkg/awsprovider"
	"knative.dev/pkg/logging"
	"knative.dev/pkg/ptr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// DefaultNetwork hands out the account's default VPC as an adopted topology.
// The lookup runs once per process; the result is cached in a single slot and
// returned to every later caller unchanged, whatever they ask for. Inject one
// instance and share it; Reset exists so tests can start over.
type DefaultNetwork struct {
	EC2 *awsprovider.EC2

	mu      sync.Mutex
	network *v1alpha1.Network
}

func NewDefaultNetwork(EC2 *awsprovider.EC2) *DefaultNetwork {
	return &DefaultNetwork{EC2: EC2}
}

func (d *DefaultNetwork) Get(ctx context.Context) (*v1alpha1.Network, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.network != nil {
		return d.network, nil
	}
	network, err := d.lookup(ctx)
	if err != nil {
		return nil, err
	}
	d.network = network
	return d.network, nil
}

// Reset clears the slot so the next Get looks the default VPC up again.
func (d *DefaultNetwork) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.network = nil
}

func (d *DefaultNetwork) lookup(ctx context.Context) (*v1alpha1.Network, error) {
	describeVpcsOutput, err := d.EC2.DescribeVpcsWithContext(ctx, &ec2.DescribeVpcsInput{Filters: []*ec2.Filter{
		{Name: aws.String("is-default"), Values: []*string{aws.String("true")}},
	}})
	if err != nil {
		return nil, fmt.Errorf("describing default vpc, %w", err)
	}
	if len(describeVpcsOutput.Vpcs) == 0 {
		return nil, fmt.Errorf("expected account to have a default vpc")
	}
	vpcID := describeVpcsOutput.Vpcs[0].VpcId
	describeSubnetsOutput, err := d.EC2.DescribeSubnetsWithContext(ctx, &ec2.DescribeSubnetsInput{Filters: []*ec2.Filter{
		{Name: aws.String("vpc-id"), Values: []*string{vpcID}},
	}})
	if err != nil {
		return nil, fmt.Errorf("describing subnets of default vpc, %w", err)
	}
	subnetIDs := make([]string, 0, len(describeSubnetsOutput.Subnets))
	for _, subnet := range describeSubnetsOutput.Subnets {
		subnetIDs = append(subnetIDs, aws.StringValue(subnet.SubnetId))
	}
	sort.Strings(subnetIDs)
	describeSecurityGroupsOutput, err := d.EC2.DescribeSecurityGroupsWithContext(ctx, &ec2.DescribeSecurityGroupsInput{Filters: []*ec2.Filter{
		{Name: aws.String("vpc-id"), Values: []*string{vpcID}},
		{Name: aws.String("group-name"), Values: []*string{aws.String("default")}},
	}})
	if err != nil {
		return nil, fmt.Errorf("describing default security group, %w", err)
	}
	if len(describeSecurityGroupsOutput.SecurityGroups) == 0 {
		return nil, fmt.Errorf("expected default vpc %s to have a default security group", aws.StringValue(vpcID))
	}
	network := &v1alpha1.Network{
		ObjectMeta: metav1.ObjectMeta{Name: "default-vpc"},
		Spec: v1alpha1.NetworkSpec{
			VPCID:             vpcID,
			UsePrivateSubnets: ptr.Bool(false),
			SubnetIDs:         subnetIDs,
			SecurityGroupIDs:  []string{aws.StringValue(describeSecurityGroupsOutput.SecurityGroups[0].GroupId)},
			PublicSubnetIDs:   subnetIDs,
		},
	}
	network.SetDefaults(ctx)
	if errs := network.Validate(ctx); errs != nil {
		return nil, fmt.Errorf("validating default network, %w", errs)
	}
	adopt(network)
	logging.FromContext(ctx).Infof("Adopted default vpc %s with %d subnets", aws.StringValue(vpcID), len(subnetIDs))
	return network, nil
}
