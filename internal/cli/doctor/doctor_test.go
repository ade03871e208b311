package doctor

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStopsWhenRequested(t *testing.T) {
	var ran []string
	check := func(name string, status Status, stop bool) Check {
		return Check{Name: name, Run: func(context.Context) (Result, bool) {
			ran = append(ran, name)
			return Result{Status: status}, stop
		}}
	}

	results := Run(context.Background(), []Check{
		check("config", StatusOK, false),
		check("database url", StatusError, true),
		check("migrations", StatusOK, false),
	})

	require.Len(t, results, 2)
	assert.Equal(t, []string{"config", "database url"}, ran)
	assert.Equal(t, "database url", results[1].Name)
	assert.True(t, HasFailures(results))
	assert.False(t, HasFailures(results[:1]))
}

func TestPrinterSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	results := []Result{
		{Name: "config", Status: StatusOK},
		{Name: "migrations", Status: StatusWarn, Details: "1 pending migration(s)"},
	}
	p.PrintHeader("blogapi doctor", "blogapi.yaml", "dev")
	for _, res := range results {
		p.PrintCheck(res)
	}
	p.Summary(results)

	out := buf.String()
	assert.Contains(t, out, "Profile: dev")
	assert.Contains(t, out, "[WARN] migrations - 1 pending migration(s)")
	assert.Contains(t, out, "Summary: 1 ok, 1 warnings, 0 errors")
	assert.NotContains(t, out, "Resolve errors")
}
