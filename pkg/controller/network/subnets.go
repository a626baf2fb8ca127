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
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/netkit-sh/netkit/pkg/apis/v1alpha1"
	"github.com/netkit-sh/netkit/pkg/awsprovider"
	"github.com/netkit-sh/netkit/pkg/cidr"
	"github.com/netkit-sh/netkit/pkg/utils/discovery"
	"go.uber.org/multierr"
	"k8s.io/client-go/util/workqueue"
	"knative.dev/pkg/logging"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"
)

// Subnets carves one data-plane subnet per availability zone. Public
// topologies route every subnet through the shared public route table. For
// private topologies each zone additionally gets a NAT-facing subnet bound to
// the public route table; its association id is recorded so the NAT gateway
// can be ordered after the subnet is actually routable.
type Subnets struct {
	EC2 *awsprovider.EC2
}

// zoneResult collects what one zone contributed to the topology.
type zoneResult struct {
	subnetID         *string
	publicSubnetID   *string
	natAssociationID *string
}

func (s *Subnets) Create(ctx context.Context, network *v1alpha1.Network) (reconcile.Result, error) {
	if network.Status.Infrastructure.VPCID == nil ||
		network.Status.Infrastructure.PublicRouteTableID == nil ||
		network.Status.Infrastructure.InternetGatewayID == nil {
		return reconcile.Result{Requeue: true}, nil
	}
	zoneNames, err := discovery.Zones(ctx, s.EC2)
	if err != nil {
		return reconcile.Result{}, err
	}
	zones := network.Spec.Zones()
	if zones > len(zoneNames) {
		return reconcile.Result{}, fmt.Errorf("requested %d availability zones, region has %d", zones, len(zoneNames))
	}
	results := make([]zoneResult, zones)
	errs := make([]error, zones)
	workqueue.ParallelizeUntil(ctx, zones, zones, func(i int) {
		results[i], errs[i] = s.ensure(ctx, network, i, zoneNames[i])
	})
	if err := multierr.Combine(errs...); err != nil {
		return reconcile.Result{}, err
	}
	infrastructure := &network.Status.Infrastructure
	infrastructure.SubnetIDs = make([]*string, zones)
	infrastructure.PublicSubnetIDs = make([]*string, zones)
	if network.Spec.Private() {
		infrastructure.NatSubnetAssociationIDs = make([]*string, zones)
	}
	for i, result := range results {
		infrastructure.SubnetIDs[i] = result.subnetID
		infrastructure.PublicSubnetIDs[i] = result.publicSubnetID
		if network.Spec.Private() {
			infrastructure.NatSubnetAssociationIDs[i] = result.natAssociationID
		}
	}
	return reconcile.Result{}, nil
}

func (s *Subnets) ensure(ctx context.Context, network *v1alpha1.Network, zone int, zoneName string) (zoneResult, error) {
	primaryBlock, err := cidr.Primary(zone)
	if err != nil {
		return zoneResult{}, err
	}
	subnetID, err := s.ensureSubnet(ctx, network, discovery.Name(network, fmt.Sprint(zone)), zoneName, primaryBlock, !network.Spec.Private())
	if err != nil {
		return zoneResult{}, err
	}
	if !network.Spec.Private() {
		if _, err := s.associate(ctx, network.Status.Infrastructure.PublicRouteTableID, subnetID); err != nil {
			return zoneResult{}, err
		}
		return zoneResult{subnetID: subnetID, publicSubnetID: subnetID}, nil
	}
	natBlock, err := cidr.NAT(zone)
	if err != nil {
		return zoneResult{}, err
	}
	natSubnetID, err := s.ensureSubnet(ctx, network, discovery.Name(network, "nat", fmt.Sprint(zone)), zoneName, natBlock, true)
	if err != nil {
		return zoneResult{}, err
	}
	associationID, err := s.associate(ctx, network.Status.Infrastructure.PublicRouteTableID, natSubnetID)
	if err != nil {
		return zoneResult{}, err
	}
	return zoneResult{subnetID: subnetID, publicSubnetID: natSubnetID, natAssociationID: associationID}, nil
}

func (s *Subnets) ensureSubnet(ctx context.Context, network *v1alpha1.Network, name *string, zoneName, block string, public bool) (*string, error) {
	describeSubnetsOutput, err := s.EC2.DescribeSubnetsWithContext(ctx, &ec2.DescribeSubnetsInput{Filters: discovery.Filters(network, name)})
	if err != nil {
		return nil, fmt.Errorf("describing subnets, %w", err)
	}
	var subnetID *string
	if len(describeSubnetsOutput.Subnets) > 0 {
		logging.FromContext(ctx).Debugf("Found subnet %s", aws.StringValue(name))
		subnetID = describeSubnetsOutput.Subnets[0].SubnetId
	} else {
		createSubnetOutput, err := s.EC2.CreateSubnetWithContext(ctx, &ec2.CreateSubnetInput{
			AvailabilityZone:  aws.String(zoneName),
			CidrBlock:         aws.String(block),
			VpcId:             network.Status.Infrastructure.VPCID,
			TagSpecifications: discovery.Tags(network, ec2.ResourceTypeSubnet, name),
		})
		if err != nil {
			return nil, fmt.Errorf("creating subnet, %w", err)
		}
		logging.FromContext(ctx).Infof("Created subnet %s in %s (%s)", aws.StringValue(name), zoneName, block)
		subnetID = createSubnetOutput.Subnet.SubnetId
	}
	if !public {
		return subnetID, nil
	}
	if _, err := s.EC2.ModifySubnetAttributeWithContext(ctx, &ec2.ModifySubnetAttributeInput{
		SubnetId:            subnetID,
		MapPublicIpOnLaunch: &ec2.AttributeBooleanValue{Value: aws.Bool(true)},
	}); err != nil {
		return nil, fmt.Errorf("modifying subnet attribute, %w", err)
	}
	logging.FromContext(ctx).Debugf("Ensured subnet %s is public", aws.StringValue(subnetID))
	return subnetID, nil
}

func (s *Subnets) associate(ctx context.Context, routeTableID, subnetID *string) (*string, error) {
	associateRouteTableOutput, err := s.EC2.AssociateRouteTableWithContext(ctx, &ec2.AssociateRouteTableInput{RouteTableId: routeTableID, SubnetId: subnetID})
	if err == nil {
		logging.FromContext(ctx).Debugf("Ensured association of route table %s to subnet %s", aws.StringValue(routeTableID), aws.StringValue(subnetID))
		return associateRouteTableOutput.AssociationId, nil
	}
	if aerr, ok := err.(awserr.Error); !ok || aerr.Code() != "Resource.AlreadyAssociated" {
		return nil, fmt.Errorf("associating route table with subnet, %w", err)
	}
	return findAssociation(ctx, s.EC2, subnetID)
}

// findAssociation recovers the association id of a subnet that is already
// bound to a route table from a previous run.
func findAssociation(ctx context.Context, client *awsprovider.EC2, subnetID *string) (*string, error) {
	describeRouteTablesOutput, err := client.DescribeRouteTablesWithContext(ctx, &ec2.DescribeRouteTablesInput{Filters: []*ec2.Filter{
		{Name: aws.String("association.subnet-id"), Values: []*string{subnetID}},
	}})
	if err != nil {
		return nil, fmt.Errorf("describing route table associations, %w", err)
	}
	for _, routeTable := range describeRouteTablesOutput.RouteTables {
		for _, association := range routeTable.Associations {
			if aws.StringValue(association.SubnetId) == aws.StringValue(subnetID) {
				return association.RouteTableAssociationId, nil
			}
		}
	}
	return nil, fmt.Errorf("expected an existing association for subnet %s", aws.StringValue(subnetID))
}
