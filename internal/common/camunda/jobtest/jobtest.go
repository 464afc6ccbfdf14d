// internal/common/camunda/jobtest/jobtest.go

// Package jobtest provides an in-memory worker.JobClient that records the
// commands a handler sends, for use in handler tests.
package jobtest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"google.golang.org/grpc"
)

// Client records every complete, fail and throw-error command.
type Client struct {
	mu        sync.Mutex
	completed []*pb.CompleteJobRequest
	failed    []*pb.FailJobRequest
	thrown    []*pb.ThrowErrorRequest

	// SendErr, when set, is returned by every command.
	SendErr error
}

// NewClient returns an empty recording client.
func NewClient() *Client {
	return &Client{}
}

func noRetry(context.Context, error) bool { return false }

func (c *Client) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(&gateway{c: c}, noRetry)
}

func (c *Client) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(&gateway{c: c}, noRetry)
}

func (c *Client) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(&gateway{c: c}, noRetry)
}

// Completed returns the recorded complete-job requests.
func (c *Client) Completed() []*pb.CompleteJobRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*pb.CompleteJobRequest(nil), c.completed...)
}

// Failed returns the recorded fail-job requests.
func (c *Client) Failed() []*pb.FailJobRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*pb.FailJobRequest(nil), c.failed...)
}

// Thrown returns the recorded throw-error requests.
func (c *Client) Thrown() []*pb.ThrowErrorRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*pb.ThrowErrorRequest(nil), c.thrown...)
}

// CompletedVariables decodes the variables of the last completed job.
func (c *Client) CompletedVariables() (map[string]interface{}, bool) {
	completed := c.Completed()
	if len(completed) == 0 {
		return nil, false
	}
	var vars map[string]interface{}
	if err := json.Unmarshal([]byte(completed[len(completed)-1].Variables), &vars); err != nil {
		return nil, false
	}
	return vars, true
}

// gateway implements only the job commands; any other call panics.
type gateway struct {
	pb.GatewayClient
	c *Client
}

func (g *gateway) CompleteJob(_ context.Context, in *pb.CompleteJobRequest, _ ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	g.c.mu.Lock()
	defer g.c.mu.Unlock()
	g.c.completed = append(g.c.completed, in)
	return &pb.CompleteJobResponse{}, g.c.SendErr
}

func (g *gateway) FailJob(_ context.Context, in *pb.FailJobRequest, _ ...grpc.CallOption) (*pb.FailJobResponse, error) {
	g.c.mu.Lock()
	defer g.c.mu.Unlock()
	g.c.failed = append(g.c.failed, in)
	return &pb.FailJobResponse{}, g.c.SendErr
}

func (g *gateway) ThrowError(_ context.Context, in *pb.ThrowErrorRequest, _ ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	g.c.mu.Lock()
	defer g.c.mu.Unlock()
	g.c.thrown = append(g.c.thrown, in)
	return &pb.ThrowErrorResponse{}, g.c.SendErr
}

// NewJob builds an activated job carrying variables encoded as JSON.
func NewJob(key int64, taskType string, variables interface{}) entities.Job {
	raw := "{}"
	if variables != nil {
		if data, err := json.Marshal(variables); err == nil {
			raw = string(data)
		}
	}

	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                      key,
		Type:                     taskType,
		ProcessInstanceKey:       key * 10,
		BpmnProcessId:            "tidescore-process",
		ProcessDefinitionVersion: 1,
		ProcessDefinitionKey:     1,
		ElementId:                "Activity_" + taskType,
		ElementInstanceKey:       1,
		CustomHeaders:            "{}",
		Worker:                   "test-worker",
		Retries:                  3,
		Variables:                raw,
	}}
}
