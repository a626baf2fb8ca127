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
	"github.com/netkit-sh/netkit/pkg/utils/discovery"
	"knative.dev/pkg/logging"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"
)

// RouteTable provisions the route table shared by every subnet with a direct
// internet route. Its default route is installed by InternetGateway.
type RouteTable struct {
	EC2 *awsprovider.EC2
}

func (r *RouteTable) Create(ctx context.Context, network *v1alpha1.Network) (reconcile.Result, error) {
	if network.Status.Infrastructure.VPCID == nil {
		return reconcile.Result{Requeue: true}, nil
	}
	routeTableID, err := r.ensure(ctx, network, discovery.Name(network, "public"))
	if err != nil {
		return reconcile.Result{}, err
	}
	network.Status.Infrastructure.PublicRouteTableID = routeTableID
	return reconcile.Result{}, nil
}

func (r *RouteTable) ensure(ctx context.Context, network *v1alpha1.Network, name *string) (*string, error) {
	describeRouteTablesOutput, err := r.EC2.DescribeRouteTablesWithContext(ctx, &ec2.DescribeRouteTablesInput{Filters: discovery.Filters(network, name)})
	if err != nil {
		return nil, fmt.Errorf("describing route tables, %w", err)
	}
	if len(describeRouteTablesOutput.RouteTables) > 0 {
		logging.FromContext(ctx).Debugf("Found route table %s", aws.StringValue(name))
		return describeRouteTablesOutput.RouteTables[0].RouteTableId, nil
	}
	createRouteTableOutput, err := r.EC2.CreateRouteTableWithContext(ctx, &ec2.CreateRouteTableInput{
		VpcId:             network.Status.Infrastructure.VPCID,
		TagSpecifications: discovery.Tags(network, ec2.ResourceTypeRouteTable, name),
	})
	if err != nil {
		return nil, fmt.Errorf("creating route table, %w", err)
	}
	logging.FromContext(ctx).Infof("Created route table %s", aws.StringValue(name))
	return createRouteTableOutput.RouteTable.RouteTableId, nil
}
