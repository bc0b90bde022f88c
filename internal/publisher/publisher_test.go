package publisher

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type call struct {
	name string
	args []string
}

type recorder struct {
	calls  []call
	failAt int // 1-based call number that fails; 0 never fails
}

func (r *recorder) run(_ context.Context, name string, args ...string) error {
	r.calls = append(r.calls, call{name: name, args: args})
	if r.failAt == len(r.calls) {
		return errors.New("cannot open display")
	}
	return nil
}

func TestRootWindow_ClearsThenSets(t *testing.T) {
	rec := &recorder{}
	p := NewRootWindow(rec.run, "", zaptest.NewLogger(t))

	require.NoError(t, p.Publish(context.Background(), "^c#EAEAEA^x 1^d^"))
	assert.Equal(t, []call{
		{name: "xsetroot", args: []string{"-name", ""}},
		{name: "xsetroot", args: []string{"-name", "^c#EAEAEA^x 1^d^"}},
	}, rec.calls)
}

func TestRootWindow_CustomCommand(t *testing.T) {
	rec := &recorder{}
	p := NewRootWindow(rec.run, "/usr/local/bin/xsetroot", nil)

	require.NoError(t, p.Publish(context.Background(), "line"))
	require.Len(t, rec.calls, 2)
	assert.Equal(t, "/usr/local/bin/xsetroot", rec.calls[1].name)
}

func TestRootWindow_ClearFailureSkipsSet(t *testing.T) {
	rec := &recorder{failAt: 1}
	p := NewRootWindow(rec.run, "", nil)

	err := p.Publish(context.Background(), "line")
	require.ErrorContains(t, err, "clearing status")
	assert.Len(t, rec.calls, 1)
}

func TestRootWindow_SetFailure(t *testing.T) {
	rec := &recorder{failAt: 2}
	p := NewRootWindow(rec.run, "", nil)

	err := p.Publish(context.Background(), "line")
	require.ErrorContains(t, err, "setting status")
}

func TestDryRun_WritesLine(t *testing.T) {
	var out bytes.Buffer
	p := NewDryRun(&out, zaptest.NewLogger(t))

	require.NoError(t, p.Publish(context.Background(), "first"))
	require.NoError(t, p.Publish(context.Background(), "second"))
	assert.Equal(t, "first\nsecond\n", out.String())
}
