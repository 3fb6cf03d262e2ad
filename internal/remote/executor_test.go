package remote

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetgear/internal/inventory"
	"fleetgear/internal/testing/mock"
)

type recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *recorder) SetStatus(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func twoNodes() []inventory.Node {
	return []inventory.Node{mock.NewNode("n1"), mock.NewNode("n2")}
}

func TestNewCommandExecutorValidation(t *testing.T) {
	_, err := NewCommandExecutor(nil, nil, 0)
	assert.Error(t, err)

	_, err = NewCommandExecutor([]string{"ssh", "{{ host }}"}, nil, 0)
	assert.ErrorContains(t, err, "host")

	_, err = NewCommandExecutor([]string{"ssh", "{{ user }}@{{ node }}", "{{ recipe }}"}, map[string]interface{}{"user": "ops"}, 0)
	assert.NoError(t, err)
}

func TestBulkTriggerRendersPerNode(t *testing.T) {
	e, err := NewCommandExecutor([]string{"ssh", "{{ user }}@{{ node }}", "chef-client", "-o", "{{ recipe }}"},
		map[string]interface{}{"user": "ops"}, 0)
	require.NoError(t, err)

	var mu sync.Mutex
	var ran []string
	e.run = func(ctx context.Context, argv []string) ([]byte, error) {
		mu.Lock()
		defer mu.Unlock()
		ran = append(ran, strings.Join(argv, " "))
		return nil, nil
	}

	rec := &recorder{}
	require.NoError(t, e.BulkTrigger(context.Background(), rec, twoNodes(), "app::service"))

	sort.Strings(ran)
	assert.Equal(t, []string{
		"ssh ops@n1 chef-client -o app::service",
		"ssh ops@n2 chef-client -o app::service",
	}, ran)
	assert.Len(t, rec.messages, 4)
}

func TestBulkTriggerReportsFailureWithOutput(t *testing.T) {
	e, err := NewCommandExecutor([]string{"run", "{{ node }}"}, nil, 1)
	require.NoError(t, err)

	e.run = func(ctx context.Context, argv []string) ([]byte, error) {
		if argv[1] == "n2" {
			return []byte("converging...\nERROR: service app failed to restart"), errors.New("exit status 1")
		}
		return nil, nil
	}

	err = e.BulkTrigger(context.Background(), &recorder{}, twoNodes(), "app::service")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "n2")
	assert.Contains(t, err.Error(), "failed to restart")
	assert.Contains(t, err.Error(), "exit status 1")
}

func TestBulkTriggerRecoversPanic(t *testing.T) {
	e, err := NewCommandExecutor([]string{"run", "{{ node }}"}, nil, 0)
	require.NoError(t, err)

	e.run = func(ctx context.Context, argv []string) ([]byte, error) {
		if argv[1] == "n1" {
			panic("transport exploded")
		}
		return nil, nil
	}

	err = e.BulkTrigger(context.Background(), &recorder{}, twoNodes(), "app::service")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic on node n1")
	assert.Contains(t, err.Error(), "transport exploded")
}

func TestBulkTriggerRunsRealCommand(t *testing.T) {
	e, err := NewCommandExecutor([]string{"true"}, nil, 0)
	require.NoError(t, err)
	assert.NoError(t, e.BulkTrigger(context.Background(), &recorder{}, twoNodes(), "r"))
}

func TestNoopExecutor(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, NoopExecutor{}.BulkTrigger(context.Background(), rec, twoNodes(), "app::service"))
	require.Len(t, rec.messages, 1)
	assert.Contains(t, rec.messages[0], "[n1 n2]")
}
