package metrics_test

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/foreman/metrics"
	"github.com/teranos/foreman/persist"
	"github.com/teranos/foreman/workflow"
	"github.com/teranos/foreman/world"
	"github.com/teranos/foreman/world/sim"
)

var _ workflow.Recorder = (*metrics.Recorder)(nil)

func TestRecorderTracksWorkflow(t *testing.T) {
	ctx := context.Background()
	log := zaptest.NewLogger(t).Sugar()
	w := sim.New("metrics", nil, log)
	w.AddBuilding(1, "Wood Furnace")
	job := sim.NewJob(world.JobMakeCharcoal, 1)
	job.Items = []world.JobItem{sim.NewJobItem(world.ItemWood, world.NoMaterial)}
	job.Flags.Suspend = true
	w.AddJob(job)
	for i := 0; i < 4; i++ {
		w.AddItem(sim.NewItem(100+i, world.ItemBar, sim.Builtin(world.MatCoal)))
	}

	rec := metrics.NewRecorder()
	wf := workflow.New(w, persist.NewMemoryStore(), workflow.Options{Logger: log, Recorder: rec, LivenessFrames: 1})
	require.NoError(t, wf.Load(ctx))
	_, err := wf.SetConstraint(ctx, "BAR//COAL", true, 20, -1)
	require.NoError(t, err)

	expected := `
# HELP foreman_job_transitions_total Resume and suspend decisions applied to jobs.
# TYPE foreman_job_transitions_total counter
foreman_job_transitions_total{direction="resume"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected), "foreman_job_transitions_total"))

	expected = `
# HELP foreman_constraint_available Available goods per constraint, in the constraint's goal unit.
# TYPE foreman_constraint_available gauge
foreman_constraint_available{constraint="BAR//COAL"} 4
`
	assert.NoError(t, testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected), "foreman_constraint_available"))

	w.RemoveJob(job.ID)
	w.AdvanceFrames(1)
	require.NoError(t, wf.OnUpdate(ctx))

	expected = `
# HELP foreman_recoveries_total Lost jobs rebuilt into their holder.
# TYPE foreman_recoveries_total counter
foreman_recoveries_total 1
# HELP foreman_tracked_jobs Repeat jobs under protection, live or pending recovery.
# TYPE foreman_tracked_jobs gauge
foreman_tracked_jobs 1
# HELP foreman_pending_recovery Lost jobs waiting to be rebuilt.
# TYPE foreman_pending_recovery gauge
foreman_pending_recovery 0
`
	assert.NoError(t, testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected),
		"foreman_recoveries_total", "foreman_tracked_jobs", "foreman_pending_recovery"))

	require.NoError(t, wf.RemoveConstraint(ctx, "BAR//COAL"))
	assert.Zero(t, testutil.CollectAndCount(rec.Registry(), "foreman_constraint_available"))
}

func TestRecorderForgetReasons(t *testing.T) {
	rec := metrics.NewRecorder()
	rec.JobForgotten(workflow.ReasonHolderLost)
	rec.JobForgotten(workflow.ReasonHolderLost)
	rec.JobForgotten(workflow.ReasonNotRepeating)

	expected := `
# HELP foreman_forgotten_total Jobs dropped from protection, by reason.
# TYPE foreman_forgotten_total counter
foreman_forgotten_total{reason="holder_lost"} 2
foreman_forgotten_total{reason="not_repeating"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected), "foreman_forgotten_total"))
}

func TestHandlerServesMetrics(t *testing.T) {
	rec := metrics.NewRecorder()
	rec.ObserveMeltable(3)

	srv := httptest.NewServer(rec.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "foreman_meltable_items 3")
}
