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
	"github.com/netkit-sh/netkit/pkg/utils/discovery"
	"go.uber.org/multierr"
	"k8s.io/client-go/util/workqueue"
	"knative.dev/pkg/logging"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"
)

// PrivateRouteTables gives each zone's data-plane subnet its egress path: a
// dedicated route table whose default route targets the zone's NAT gateway.
type PrivateRouteTables struct {
	EC2 *awsprovider.EC2
}

func (p *PrivateRouteTables) Create(ctx context.Context, network *v1alpha1.Network) (reconcile.Result, error) {
	if !network.Spec.Private() {
		return reconcile.Result{}, nil
	}
	zones := network.Spec.Zones()
	infrastructure := network.Status.Infrastructure
	if infrastructure.VPCID == nil ||
		len(infrastructure.SubnetIDs) != zones ||
		len(infrastructure.NatGatewayIDs) != zones {
		return reconcile.Result{Requeue: true}, nil
	}
	privateRouteTableIDs := make([]*string, zones)
	errs := make([]error, zones)
	workqueue.ParallelizeUntil(ctx, zones, zones, func(i int) {
		privateRouteTableIDs[i], errs[i] = p.ensure(ctx, network, i)
	})
	if err := multierr.Combine(errs...); err != nil {
		return reconcile.Result{}, err
	}
	network.Status.Infrastructure.PrivateRouteTableIDs = privateRouteTableIDs
	return reconcile.Result{}, nil
}

func (p *PrivateRouteTables) ensure(ctx context.Context, network *v1alpha1.Network, zone int) (*string, error) {
	name := discovery.Name(network, "private", fmt.Sprint(zone))
	routeTableID, err := p.ensureRouteTable(ctx, network, name)
	if err != nil {
		return nil, err
	}
	if _, err := p.EC2.CreateRouteWithContext(ctx, &ec2.CreateRouteInput{
		RouteTableId:         routeTableID,
		DestinationCidrBlock: aws.String("0.0.0.0/0"),
		NatGatewayId:         network.Status.Infrastructure.NatGatewayIDs[zone],
	}); err != nil {
		if aerr, ok := err.(awserr.Error); !ok || aerr.Code() != "RouteAlreadyExists" {
			return nil, fmt.Errorf("creating route for NAT gateway, %w", err)
		}
	}
	logging.FromContext(ctx).Debugf("Ensured route for NAT gateway %s", aws.StringValue(network.Status.Infrastructure.NatGatewayIDs[zone]))
	if _, err := p.associate(ctx, routeTableID, network.Status.Infrastructure.SubnetIDs[zone]); err != nil {
		return nil, err
	}
	return routeTableID, nil
}

func (p *PrivateRouteTables) ensureRouteTable(ctx context.Context, network *v1alpha1.Network, name *string) (*string, error) {
	describeRouteTablesOutput, err := p.EC2.DescribeRouteTablesWithContext(ctx, &ec2.DescribeRouteTablesInput{Filters: discovery.Filters(network, name)})
	if err != nil {
		return nil, fmt.Errorf("describing route tables, %w", err)
	}
	if len(describeRouteTablesOutput.RouteTables) > 0 {
		logging.FromContext(ctx).Debugf("Found route table %s", aws.StringValue(name))
		return describeRouteTablesOutput.RouteTables[0].RouteTableId, nil
	}
	createRouteTableOutput, err := p.EC2.CreateRouteTableWithContext(ctx, &ec2.CreateRouteTableInput{
		VpcId:             network.Status.Infrastructure.VPCID,
		TagSpecifications: discovery.Tags(network, ec2.ResourceTypeRouteTable, name),
	})
	if err != nil {
		return nil, fmt.Errorf("creating route table, %w", err)
	}
	logging.FromContext(ctx).Infof("Created route table %s", aws.StringValue(name))
	return createRouteTableOutput.RouteTable.RouteTableId, nil
}

func (p *PrivateRouteTables) associate(ctx context.Context, routeTableID, subnetID *string) (*string, error) {
	associateRouteTableOutput, err := p.EC2.AssociateRouteTableWithContext(ctx, &ec2.AssociateRouteTableInput{RouteTableId: routeTableID, SubnetId: subnetID})
	if err == nil {
		logging.FromContext(ctx).Debugf("Ensured association of route table %s to subnet %s", aws.StringValue(routeTableID), aws.StringValue(subnetID))
		return associateRouteTableOutput.AssociationId, nil
	}
	if aerr, ok := err.(awserr.Error); !ok || aerr.Code() != "Resource.AlreadyAssociated" {
		return nil, fmt.Errorf("associating route table with subnet, %w", err)
	}
	return findAssociation(ctx, p.EC2, subnetID)
}
