//go:build e2e && unix

package main

import (
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func startDashboard(t *testing.T) *TUITestFramework {
	t.Helper()
	tf := NewTUITest(t)
	t.Cleanup(tf.Cleanup)

	_, err := tf.CreateTestWorkspace()
	require.NoError(t, err, "Failed to create test workspace")
	require.NoError(t, tf.StartApp(), "Failed to start app")
	require.True(t, tf.Ready(), "Should render the report")
	return tf
}

func TestDashboardShowsBaseline(t *testing.T) {
	t.Parallel()
	tf := startDashboard(t)

	require.True(t, tf.SeePlain("Example Press"), "Should show the member name")
	require.True(t, tf.SeePlain("Journal articles"), "Should select the configured content type")
	require.True(t, tf.SeePlain("90%"), "Should show the References percentage")
	require.True(t, tf.SeePlain("Reference lists deposited."), "Should show the tooltip of the selected check")
}

func TestDashboardContentTypeTabs(t *testing.T) {
	t.Parallel()
	tf := startDashboard(t)

	mark := tf.Mark()
	tf.NextContentType()
	require.True(t, tf.SeePlainSince(mark, "Books"), "Tab should move to Books")
	require.True(t, tf.SeePlainSince(mark, "Funder IDs"), "Should show the Books checks")

	mark = tf.Mark()
	tf.NextContentType()
	require.True(t, tf.SeePlainSince(mark, "Journal articles"), "Tabs should wrap around")
}

func TestDashboardDateRange(t *testing.T) {
	t.Parallel()
	tf := startDashboard(t)

	mark := tf.Mark()
	tf.CycleDateRange()
	require.True(t, tf.SeePlainSince(mark, "Current content"), "Should switch to current content")
	require.True(t, tf.SeePlainSince(mark, "70%"), "Should show the date-scoped percentage")

	mark = tf.Mark()
	tf.CycleDateRange()
	require.True(t, tf.SeePlainSince(mark, "Pick another date range"), "Empty back file should explain itself")
}

func TestDashboardTitleSearch(t *testing.T) {
	t.Parallel()
	tf := startDashboard(t)

	mark := tf.Mark()
	tf.Search("nature")
	require.True(t, tf.SeePlainSince(mark, "Nature Physics"), "Should suggest the matching title")

	mark = tf.Mark()
	tf.Enter()
	require.True(t, tf.SeePlainSince(mark, "[Title: Nature Physics]"), "Should apply the title filter")
	require.True(t, tf.SeePlainSince(mark, "55%"), "Should show the title-scoped checks")

	mark = tf.Mark()
	tf.Escape()
	require.True(t, tf.SeePlainSince(mark, "press / to filter by journal title"), "Esc should clear the title")
	require.True(t, tf.SeePlainSince(mark, "90%"), "Should return to the baseline checks")
}

func TestDashboardHelpPopup(t *testing.T) {
	t.Parallel()
	tf := startDashboard(t)

	mark := tf.Mark()
	tf.ToggleHelp()
	require.True(t, tf.SeePlainSince(mark, "partrep help"), "Should open the help popup")

	mark = tf.Mark()
	tf.ToggleHelp()
	require.True(t, tf.SeePlainSince(mark, "References"), "Any key should close the popup")
}

func TestDashboardReportPager(t *testing.T) {
	t.Parallel()
	tf := startDashboard(t)

	mark := tf.Mark()
	tf.OpenReport()
	require.True(t, tf.SeePlainSince(mark, "Participation report: Example Press"), "Should open the report in the pager")

	mark = tf.Mark()
	tf.Quit()
	require.True(t, tf.SeePlainSince(mark, "partrep"), "Should return to the dashboard after closing the pager")
}

func TestPrintedReport(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	_, err := tf.CreateTestWorkspace()
	require.NoError(t, err, "Failed to create test workspace")

	cmd := exec.Command(binPath, "--config", tf.config, "report", "--pager", "never")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))

	output := string(out)
	require.Contains(t, output, "Content type: Journal articles")
	require.Contains(t, output, "90%")
}

func TestHelpCommand(t *testing.T) {
	t.Parallel()

	cmd := exec.Command(binPath, "--help")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "Help command should run without error")

	output := string(out)
	require.True(t, strings.Contains(output, "Usage"), "Help should contain usage information")
	require.Contains(t, output, "--member")
	require.Contains(t, output, "report")
}
