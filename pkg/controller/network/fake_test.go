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

package network_test

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
)

// fakeEC2 is an in-memory EC2 collaborator. Only the operations the engine
// declares are implemented; anything else panics through the embedded nil
// interface. failOn injects an error for a single named operation.
type fakeEC2 struct {
	ec2iface.EC2API

	mu     sync.Mutex
	nextID int
	calls  map[string]int
	failOn map[string]error

	zoneNames        []string
	vpcs             []*ec2.Vpc
	securityGroups   []*ec2.SecurityGroup
	routeTables      []*ec2.RouteTable
	internetGateways []*ec2.InternetGateway
	subnets          []*ec2.Subnet
	addresses        []*ec2.Address
	natGateways      []*ec2.NatGateway
}

func newFakeEC2() *fakeEC2 {
	return &fakeEC2{
		calls:     map[string]int{},
		failOn:    map[string]error{},
		zoneNames: []string{"us-mock-1a", "us-mock-1b", "us-mock-1c"},
	}
}

func (f *fakeEC2) id(prefix string) *string {
	f.nextID++
	return aws.String(fmt.Sprintf("%s-%04x", prefix, f.nextID))
}

func (f *fakeEC2) enter(op string) error {
	f.calls[op]++
	return f.failOn[op]
}

func tagValue(tags []*ec2.Tag, key string) string {
	for _, tag := range tags {
		if aws.StringValue(tag.Key) == key {
			return aws.StringValue(tag.Value)
		}
	}
	return ""
}

// matchTags applies every "tag:" filter; other filters are the caller's job.
func matchTags(tags []*ec2.Tag, filters []*ec2.Filter) bool {
	for _, filter := range filters {
		name := aws.StringValue(filter.Name)
		if !strings.HasPrefix(name, "tag:") {
			continue
		}
		if tagValue(tags, strings.TrimPrefix(name, "tag:")) != aws.StringValue(filter.Values[0]) {
			return false
		}
	}
	return true
}

func specTags(specs []*ec2.TagSpecification) (tags []*ec2.Tag) {
	for _, spec := range specs {
		tags = append(tags, spec.Tags...)
	}
	return tags
}

func filterValue(filters []*ec2.Filter, name string) (string, bool) {
	for _, filter := range filters {
		if aws.StringValue(filter.Name) == name {
			return aws.StringValue(filter.Values[0]), true
		}
	}
	return "", false
}

func (f *fakeEC2) DescribeAvailabilityZonesWithContext(_ aws.Context, _ *ec2.DescribeAvailabilityZonesInput, _ ...request.Option) (*ec2.DescribeAvailabilityZonesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DescribeAvailabilityZones"); err != nil {
		return nil, err
	}
	output := &ec2.DescribeAvailabilityZonesOutput{}
	for _, name := range f.zoneNames {
		output.AvailabilityZones = append(output.AvailabilityZones, &ec2.AvailabilityZone{ZoneName: aws.String(name), State: aws.String("available")})
	}
	return output, nil
}

func (f *fakeEC2) DescribeVpcsWithContext(_ aws.Context, input *ec2.DescribeVpcsInput, _ ...request.Option) (*ec2.DescribeVpcsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DescribeVpcs"); err != nil {
		return nil, err
	}
	output := &ec2.DescribeVpcsOutput{}
	wantDefault, filterDefault := filterValue(input.Filters, "is-default")
	for _, vpc := range f.vpcs {
		if filterDefault && fmt.Sprint(aws.BoolValue(vpc.IsDefault)) != wantDefault {
			continue
		}
		if !matchTags(vpc.Tags, input.Filters) {
			continue
		}
		output.Vpcs = append(output.Vpcs, vpc)
	}
	return output, nil
}

func (f *fakeEC2) CreateVpcWithContext(_ aws.Context, input *ec2.CreateVpcInput, _ ...request.Option) (*ec2.CreateVpcOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateVpc"); err != nil {
		return nil, err
	}
	vpc := &ec2.Vpc{
		VpcId:     f.id("vpc"),
		CidrBlock: input.CidrBlock,
		IsDefault: aws.Bool(false),
		Tags:      specTags(input.TagSpecifications),
	}
	f.vpcs = append(f.vpcs, vpc)
	// every VPC is born with a default security group
	f.securityGroups = append(f.securityGroups, &ec2.SecurityGroup{
		GroupId:   f.id("sg"),
		GroupName: aws.String("default"),
		VpcId:     vpc.VpcId,
	})
	return &ec2.CreateVpcOutput{Vpc: vpc}, nil
}

func (f *fakeEC2) ModifyVpcAttributeWithContext(_ aws.Context, _ *ec2.ModifyVpcAttributeInput, _ ...request.Option) (*ec2.ModifyVpcAttributeOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ModifyVpcAttribute"); err != nil {
		return nil, err
	}
	return &ec2.ModifyVpcAttributeOutput{}, nil
}

func (f *fakeEC2) DescribeSecurityGroupsWithContext(_ aws.Context, input *ec2.DescribeSecurityGroupsInput, _ ...request.Option) (*ec2.DescribeSecurityGroupsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DescribeSecurityGroups"); err != nil {
		return nil, err
	}
	wantVpc, _ := filterValue(input.Filters, "vpc-id")
	wantName, _ := filterValue(input.Filters, "group-name")
	output := &ec2.DescribeSecurityGroupsOutput{}
	for _, group := range f.securityGroups {
		if wantVpc != "" && aws.StringValue(group.VpcId) != wantVpc {
			continue
		}
		if wantName != "" && aws.StringValue(group.GroupName) != wantName {
			continue
		}
		output.SecurityGroups = append(output.SecurityGroups, group)
	}
	return output, nil
}

func (f *fakeEC2) DescribeRouteTablesWithContext(_ aws.Context, input *ec2.DescribeRouteTablesInput, _ ...request.Option) (*ec2.DescribeRouteTablesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DescribeRouteTables"); err != nil {
		return nil, err
	}
	wantSubnet, filterSubnet := filterValue(input.Filters, "association.subnet-id")
	output := &ec2.DescribeRouteTablesOutput{}
	for _, routeTable := range f.routeTables {
		if filterSubnet {
			for _, association := range routeTable.Associations {
				if aws.StringValue(association.SubnetId) == wantSubnet {
					output.RouteTables = append(output.RouteTables, routeTable)
					break
				}
			}
			continue
		}
		if !matchTags(routeTable.Tags, input.Filters) {
			continue
		}
		output.RouteTables = append(output.RouteTables, routeTable)
	}
	return output, nil
}

func (f *fakeEC2) CreateRouteTableWithContext(_ aws.Context, input *ec2.CreateRouteTableInput, _ ...request.Option) (*ec2.CreateRouteTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateRouteTable"); err != nil {
		return nil, err
	}
	routeTable := &ec2.RouteTable{
		RouteTableId: f.id("rtb"),
		VpcId:        input.VpcId,
		Tags:         specTags(input.TagSpecifications),
	}
	f.routeTables = append(f.routeTables, routeTable)
	return &ec2.CreateRouteTableOutput{RouteTable: routeTable}, nil
}

func (f *fakeEC2) CreateRouteWithContext(_ aws.Context, input *ec2.CreateRouteInput, _ ...request.Option) (*ec2.CreateRouteOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateRoute"); err != nil {
		return nil, err
	}
	for _, routeTable := range f.routeTables {
		if aws.StringValue(routeTable.RouteTableId) == aws.StringValue(input.RouteTableId) {
			routeTable.Routes = append(routeTable.Routes, &ec2.Route{
				DestinationCidrBlock: input.DestinationCidrBlock,
				GatewayId:            input.GatewayId,
				NatGatewayId:         input.NatGatewayId,
			})
			return &ec2.CreateRouteOutput{Return: aws.Bool(true)}, nil
		}
	}
	return nil, fmt.Errorf("route table %s not found", aws.StringValue(input.RouteTableId))
}

func (f *fakeEC2) AssociateRouteTableWithContext(_ aws.Context, input *ec2.AssociateRouteTableInput, _ ...request.Option) (*ec2.AssociateRouteTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("AssociateRouteTable"); err != nil {
		return nil, err
	}
	for _, routeTable := range f.routeTables {
		if aws.StringValue(routeTable.RouteTableId) == aws.StringValue(input.RouteTableId) {
			association := &ec2.RouteTableAssociation{
				RouteTableAssociationId: f.id("rtbassoc"),
				RouteTableId:            routeTable.RouteTableId,
				SubnetId:                input.SubnetId,
			}
			routeTable.Associations = append(routeTable.Associations, association)
			return &ec2.AssociateRouteTableOutput{AssociationId: association.RouteTableAssociationId}, nil
		}
	}
	return nil, fmt.Errorf("route table %s not found", aws.StringValue(input.RouteTableId))
}

func (f *fakeEC2) DescribeInternetGatewaysWithContext(_ aws.Context, input *ec2.DescribeInternetGatewaysInput, _ ...request.Option) (*ec2.DescribeInternetGatewaysOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DescribeInternetGateways"); err != nil {
		return nil, err
	}
	output := &ec2.DescribeInternetGatewaysOutput{}
	for _, gateway := range f.internetGateways {
		if matchTags(gateway.Tags, input.Filters) {
			output.InternetGateways = append(output.InternetGateways, gateway)
		}
	}
	return output, nil
}

func (f *fakeEC2) CreateInternetGatewayWithContext(_ aws.Context, input *ec2.CreateInternetGatewayInput, _ ...request.Option) (*ec2.CreateInternetGatewayOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateInternetGateway"); err != nil {
		return nil, err
	}
	gateway := &ec2.InternetGateway{
		InternetGatewayId: f.id("igw"),
		Tags:              specTags(input.TagSpecifications),
	}
	f.internetGateways = append(f.internetGateways, gateway)
	return &ec2.CreateInternetGatewayOutput{InternetGateway: gateway}, nil
}

func (f *fakeEC2) AttachInternetGatewayWithContext(_ aws.Context, input *ec2.AttachInternetGatewayInput, _ ...request.Option) (*ec2.AttachInternetGatewayOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("AttachInternetGateway"); err != nil {
		return nil, err
	}
	for _, gateway := range f.internetGateways {
		if aws.StringValue(gateway.InternetGatewayId) == aws.StringValue(input.InternetGatewayId) {
			gateway.Attachments = append(gateway.Attachments, &ec2.InternetGatewayAttachment{VpcId: input.VpcId})
		}
	}
	return &ec2.AttachInternetGatewayOutput{}, nil
}

func (f *fakeEC2) DescribeSubnetsWithContext(_ aws.Context, input *ec2.DescribeSubnetsInput, _ ...request.Option) (*ec2.DescribeSubnetsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DescribeSubnets"); err != nil {
		return nil, err
	}
	wantVpc, filterVpc := filterValue(input.Filters, "vpc-id")
	output := &ec2.DescribeSubnetsOutput{}
	for _, subnet := range f.subnets {
		if filterVpc && aws.StringValue(subnet.VpcId) != wantVpc {
			continue
		}
		if !matchTags(subnet.Tags, input.Filters) {
			continue
		}
		output.Subnets = append(output.Subnets, subnet)
	}
	return output, nil
}

func (f *fakeEC2) CreateSubnetWithContext(_ aws.Context, input *ec2.CreateSubnetInput, _ ...request.Option) (*ec2.CreateSubnetOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateSubnet"); err != nil {
		return nil, err
	}
	subnet := &ec2.Subnet{
		SubnetId:            f.id("subnet"),
		VpcId:               input.VpcId,
		AvailabilityZone:    input.AvailabilityZone,
		CidrBlock:           input.CidrBlock,
		MapPublicIpOnLaunch: aws.Bool(false),
		Tags:                specTags(input.TagSpecifications),
	}
	f.subnets = append(f.subnets, subnet)
	return &ec2.CreateSubnetOutput{Subnet: subnet}, nil
}

func (f *fakeEC2) ModifySubnetAttributeWithContext(_ aws.Context, input *ec2.ModifySubnetAttributeInput, _ ...request.Option) (*ec2.ModifySubnetAttributeOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ModifySubnetAttribute"); err != nil {
		return nil, err
	}
	for _, subnet := range f.subnets {
		if aws.StringValue(subnet.SubnetId) == aws.StringValue(input.SubnetId) && input.MapPublicIpOnLaunch != nil {
			subnet.MapPublicIpOnLaunch = input.MapPublicIpOnLaunch.Value
		}
	}
	return &ec2.ModifySubnetAttributeOutput{}, nil
}

func (f *fakeEC2) DescribeAddressesWithContext(_ aws.Context, input *ec2.DescribeAddressesInput, _ ...request.Option) (*ec2.DescribeAddressesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DescribeAddresses"); err != nil {
		return nil, err
	}
	output := &ec2.DescribeAddressesOutput{}
	for _, address := range f.addresses {
		if matchTags(address.Tags, input.Filters) {
			output.Addresses = append(output.Addresses, address)
		}
	}
	return output, nil
}

func (f *fakeEC2) AllocateAddressWithContext(_ aws.Context, input *ec2.AllocateAddressInput, _ ...request.Option) (*ec2.AllocateAddressOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("AllocateAddress"); err != nil {
		return nil, err
	}
	address := &ec2.Address{
		AllocationId: f.id("eipalloc"),
		PublicIp:     aws.String(fmt.Sprintf("192.0.2.%d", f.nextID)),
		Tags:         specTags(input.TagSpecifications),
	}
	f.addresses = append(f.addresses, address)
	return &ec2.AllocateAddressOutput{AllocationId: address.AllocationId, PublicIp: address.PublicIp}, nil
}

func (f *fakeEC2) DescribeNatGatewaysWithContext(_ aws.Context, input *ec2.DescribeNatGatewaysInput, _ ...request.Option) (*ec2.DescribeNatGatewaysOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DescribeNatGateways"); err != nil {
		return nil, err
	}
	output := &ec2.DescribeNatGatewaysOutput{}
	for _, gateway := range f.natGateways {
		if matchTags(gateway.Tags, input.Filter) {
			output.NatGateways = append(output.NatGateways, gateway)
		}
	}
	return output, nil
}

func (f *fakeEC2) CreateNatGatewayWithContext(_ aws.Context, input *ec2.CreateNatGatewayInput, _ ...request.Option) (*ec2.CreateNatGatewayOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateNatGateway"); err != nil {
		return nil, err
	}
	gateway := &ec2.NatGateway{
		NatGatewayId:        f.id("nat"),
		SubnetId:            input.SubnetId,
		State:               aws.String(ec2.NatGatewayStateAvailable),
		NatGatewayAddresses: []*ec2.NatGatewayAddress{{AllocationId: input.AllocationId}},
		Tags:                specTags(input.TagSpecifications),
	}
	f.natGateways = append(f.natGateways, gateway)
	return &ec2.CreateNatGatewayOutput{NatGateway: gateway}, nil
}

func (f *fakeEC2) WaitUntilNatGatewayAvailableWithContext(_ aws.Context, _ *ec2.DescribeNatGatewaysInput, _ ...request.WaiterOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enter("WaitUntilNatGatewayAvailable")
}

// helpers for assertions

func (f *fakeEC2) subnet(id string) *ec2.Subnet {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, subnet := range f.subnets {
		if aws.StringValue(subnet.SubnetId) == id {
			return subnet
		}
	}
	return nil
}

func (f *fakeEC2) routeTableFor(subnetID string) *ec2.RouteTable {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, routeTable := range f.routeTables {
		for _, association := range routeTable.Associations {
			if aws.StringValue(association.SubnetId) == subnetID {
				return routeTable
			}
		}
	}
	return nil
}

func (f *fakeEC2) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeEC2) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, count := range f.calls {
		total += count
	}
	return total
}
