package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/facades/cmd/facades/commands"
	"go.trai.ch/facades/internal/app"
	"go.trai.ch/facades/internal/build"
)

type call struct {
	cwd   string
	paths []string
	opts  app.ResolveOptions
}

type mockApp struct {
	resolveFunc func(ctx context.Context, cwd string, paths []string, opts app.ResolveOptions) error
	watchFunc   func(ctx context.Context, cwd string, paths []string, opts app.ResolveOptions) error
}

func (m *mockApp) Resolve(ctx context.Context, cwd string, paths []string, opts app.ResolveOptions) error {
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, cwd, paths, opts)
	}
	return nil
}

func (m *mockApp) Watch(ctx context.Context, cwd string, paths []string, opts app.ResolveOptions) error {
	if m.watchFunc != nil {
		return m.watchFunc(ctx, cwd, paths, opts)
	}
	return nil
}

func TestCommands_Resolve(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var got *call
		mock := &mockApp{
			resolveFunc: func(_ context.Context, cwd string, paths []string, opts app.ResolveOptions) error {
				got = &call{cwd: cwd, paths: paths, opts: opts}
				return nil
			},
		}

		cli := commands.New(mock, commands.WithWorkingDir("/work"))
		cli.SetArgs([]string{"resolve", "src/Main.kt", "build.kts", "--platform", "js", "--json"})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "/work", got.cwd)
		assert.Equal(t, []string{"src/Main.kt", "build.kts"}, got.paths)
		assert.Equal(t, app.ResolveOptions{Platform: "js", JSON: true}, got.opts)
	})

	t.Run("returns error on resolve failure", func(t *testing.T) {
		mock := &mockApp{
			resolveFunc: func(context.Context, string, []string, app.ResolveOptions) error {
				return errors.New("simulated error")
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"resolve", "Main.kt"})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})

	t.Run("shows usage when no files provided", func(t *testing.T) {
		mock := &mockApp{
			resolveFunc: func(context.Context, string, []string, app.ResolveOptions) error {
				panic("should not be called")
			},
		}

		cli := commands.New(mock)
		buf := new(bytes.Buffer)
		cli.SetOutput(buf, buf)
		cli.SetArgs([]string{"resolve"})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "Usage:")
	})
}

func TestCommands_Watch(t *testing.T) {
	t.Run("passes files and context", func(t *testing.T) {
		type ctxKey struct{}
		ctx := context.WithValue(context.Background(), ctxKey{}, "marker")

		var got *call
		mock := &mockApp{
			watchFunc: func(ctx context.Context, cwd string, paths []string, opts app.ResolveOptions) error {
				assert.Equal(t, "marker", ctx.Value(ctxKey{}))
				got = &call{cwd: cwd, paths: paths, opts: opts}
				return nil
			},
		}

		cli := commands.New(mock, commands.WithWorkingDir("/work"))
		cli.SetArgs([]string{"watch", "src/Main.kt"})

		require.NoError(t, cli.Execute(ctx))
		require.NotNil(t, got)
		assert.Equal(t, []string{"src/Main.kt"}, got.paths)
		assert.Empty(t, got.opts.Platform)
	})

	t.Run("requires a file", func(t *testing.T) {
		cli := commands.New(&mockApp{})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"watch"})

		require.Error(t, cli.Execute(context.Background()))
	})
}

func TestCommands_Verbose(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{name: "default", args: []string{"resolve", "a.kt"}, want: false},
		{name: "long flag", args: []string{"--verbose", "resolve", "a.kt"}, want: true},
		{name: "short flag after command", args: []string{"resolve", "a.kt", "-v"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *bool
			cli := commands.New(&mockApp{}, commands.WithVerboseHook(func(v bool) {
				got = &v
			}))
			cli.SetArgs(tt.args)

			require.NoError(t, cli.Execute(context.Background()))
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestCommands_Version(t *testing.T) {
	cli := commands.New(&mockApp{})

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	err := cli.Execute(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "facades version "+build.Version)
}
