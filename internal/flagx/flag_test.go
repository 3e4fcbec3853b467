package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-c", "server.json", "-a", ":9274"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-c", "server.json"},
		},
		{
			name:    "equals form",
			args:    []string{"-config=server.json", "-m", "bridged"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-config=server.json"},
		},
		{
			name:    "unknown flags and positionals dropped",
			args:    []string{"-x", "1", "-y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-m"},
			allowed: []string{"-m"},
			want:    []string{"-m"},
		},
		{
			name:    "next flag is not a value",
			args:    []string{"-m", "-a", ":1"},
			allowed: []string{"-m"},
			want:    []string{"-m"},
		},
		{
			name:    "order preserved",
			args:    []string{"-a", ":1", "-d", "dsn", "-a", ":2"},
			allowed: []string{"-a"},
			want:    []string{"-a", ":1", "-a", ":2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"server", "-a", ":1", "-c", "cfg.json"}
	assert.Equal(t, "cfg.json", JsonConfigFlags())

	os.Args = []string{"server", "-config=other.json"}
	assert.Equal(t, "other.json", JsonConfigFlags())

	os.Args = []string{"cli", "login", "alice", "--config", "cli.json"}
	assert.Equal(t, "cli.json", JsonConfigFlags())

	os.Args = []string{"server"}
	assert.Equal(t, "", JsonConfigFlags())
}
