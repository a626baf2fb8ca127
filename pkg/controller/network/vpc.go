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

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/netkit-sh/netkit/pkg/apis/v1alpha1"
	"github.com/netkit-sh/netkit/pkg/awsprovider"
	"github.com/netkit-sh/netkit/pkg/cidr"
	"github.com/netkit-sh/netkit/pkg/utils/discovery"
	"knative.dev/pkg/logging"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"
)

type VPC struct {
	EC2 *awsprovider.EC2
}

func (v *VPC) Create(ctx context.Context, network *v1alpha1.Network) (reconcile.Result, error) {
	vpcID, err := v.ensure(ctx, network)
	if err != nil {
		return reconcile.Result{}, err
	}
	// DNS support and hostnames, one attribute per call
	for _, input := range []*ec2.ModifyVpcAttributeInput{
		{VpcId: vpcID, EnableDnsSupport: &ec2.AttributeBooleanValue{Value: aws.Bool(true)}},
		{VpcId: vpcID, EnableDnsHostnames: &ec2.AttributeBooleanValue{Value: aws.Bool(true)}},
	} {
		if _, err := v.EC2.ModifyVpcAttributeWithContext(ctx, input); err != nil {
			return reconcile.Result{}, fmt.Errorf("modifying vpc attribute, %w", err)
		}
	}
	securityGroupID, err := v.defaultSecurityGroup(ctx, vpcID)
	if err != nil {
		return reconcile.Result{}, err
	}
	network.Status.Infrastructure.VPCID = vpcID
	network.Status.Infrastructure.SecurityGroupIDs = []string{securityGroupID}
	return reconcile.Result{}, nil
}

func (v *VPC) ensure(ctx context.Context, network *v1alpha1.Network) (*string, error) {
	describeVpcsOutput, err := v.EC2.DescribeVpcsWithContext(ctx, &ec2.DescribeVpcsInput{Filters: discovery.Filters(network, discovery.Name(network))})
	if err != nil {
		return nil, fmt.Errorf("describing vpc, %w", err)
	}
	if len(describeVpcsOutput.Vpcs) > 0 {
		logging.FromContext(ctx).Debugf("Found vpc %s", aws.StringValue(describeVpcsOutput.Vpcs[0].VpcId))
		return describeVpcsOutput.Vpcs[0].VpcId, nil
	}
	createVpcOutput, err := v.EC2.CreateVpcWithContext(ctx, &ec2.CreateVpcInput{
		CidrBlock:         aws.String(cidr.Network),
		TagSpecifications: discovery.Tags(network, ec2.ResourceTypeVpc, discovery.Name(network)),
	})
	if err != nil {
		return nil, fmt.Errorf("creating vpc, %w", err)
	}
	logging.FromContext(ctx).Infof("Created vpc %s", aws.StringValue(createVpcOutput.Vpc.VpcId))
	return createVpcOutput.Vpc.VpcId, nil
}

func (v *VPC) defaultSecurityGroup(ctx context.Context, vpcID *string) (string, error) {
	describeSecurityGroupsOutput, err := v.EC2.DescribeSecurityGroupsWithContext(ctx, &ec2.DescribeSecurityGroupsInput{Filters: []*ec2.Filter{
		{Name: aws.String("vpc-id"), Values: []*string{vpcID}},
		{Name: aws.String("group-name"), Values: []*string{aws.String("default")}},
	}})
	if err != nil {
		return "", fmt.Errorf("describing default security group, %w", err)
	}
	if len(describeSecurityGroupsOutput.SecurityGroups) == 0 {
		return "", fmt.Errorf("expected a default security group for vpc %s", aws.StringValue(vpcID))
	}
	return aws.StringValue(describeSecurityGroupsOutput.SecurityGroups[0].GroupId), nil
}
