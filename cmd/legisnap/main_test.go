package main

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legilibre/legi-snapshot-go/legisnapshot/sqlengine"
	"github.com/legilibre/legi-snapshot-go/testutil/dbfixture"
	"github.com/legilibre/legi-snapshot-go/testutil/fixture"
)

// givenArchive points the command at a SQLite file holding the scenario.
func givenArchive(t *testing.T) {
	t.Helper()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "legi.sqlite")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err, "error in arranging test data")
	defer db.Close()

	exec := func(ctx context.Context, statement string) error {
		_, err := db.ExecContext(ctx, statement)
		return err
	}
	require.NoError(t, dbfixture.CreateSchema(ctx, exec), "error in arranging test data")
	require.NoError(t, dbfixture.Load(ctx, exec, sqlengine.DialectSQLite, fixture.Scenario()), "error in arranging test data")

	t.Setenv("LEGISNAP_DATABASE_DRIVER", "sqlite")
	t.Setenv("LEGISNAP_DATABASE_DSN", path)
}

func runCommand(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)

	return code, stdout.String(), stderr.String()
}

func Test_Structure(t *testing.T) {
	// setup
	givenArchive(t)

	// act
	code, stdout, stderr := runCommand(t, "structure", fixture.CodeTravailID, "--date", "2017-01-01")

	// assert
	require.Equal(t, exitOK, code, stderr)

	var tree map[string]any
	require.NoError(t, jsonAPI.UnmarshalFromString(stdout, &tree))
	assert.Equal(t, "text", tree["kind"])
	assert.Equal(t, fixture.CodeTravailID, tree["data"].(map[string]any)["id"])
	assert.NotEmpty(t, tree["children"])
}

func Test_Full_Pretty(t *testing.T) {
	// setup
	givenArchive(t)

	// act
	code, stdout, stderr := runCommand(t, "full", fixture.DispositionsID, "--date", "2016-01-01", "--pretty")

	// assert
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "\n  \"kind\": \"section\"")
	assert.Contains(t, stdout, `"num": "R2151-1"`)
	assert.Contains(t, stdout, `"num": "R2151-2"`)
}

func Test_Dates(t *testing.T) {
	// setup
	givenArchive(t)

	// act
	code, stdout, stderr := runCommand(t, "dates", fixture.ConventionID)

	// assert
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "[\"2010-01-01\"]\n", stdout)
}

func Test_Texts(t *testing.T) {
	// setup
	givenArchive(t)

	// act
	code, stdout, stderr := runCommand(t, "texts", "--nature", "CODE")

	// assert
	require.Equal(t, exitOK, code, stderr)

	var texts []map[string]any
	require.NoError(t, jsonAPI.UnmarshalFromString(stdout, &texts))
	assert.Len(t, texts, 2)
}

func Test_Containers(t *testing.T) {
	// setup
	givenArchive(t)

	// act
	code, stdout, stderr := runCommand(t, "containers", "--nature", "IDCC")
	repealedCode, repealed, repealedStderr := runCommand(t, "containers", "--state", "ABROGE")

	// assert
	require.Equal(t, exitOK, code, stderr)

	var containers []map[string]any
	require.NoError(t, jsonAPI.UnmarshalFromString(stdout, &containers))
	require.Len(t, containers, 2)
	assert.Equal(t, fixture.ImmobilierID, containers[0]["id"])
	assert.Equal(t, "1527", containers[0]["num"])
	assert.Equal(t, fixture.ConventionID, containers[1]["id"])

	require.Equal(t, exitOK, repealedCode, repealedStderr)
	assert.Contains(t, repealed, fixture.DenouncedID)
	assert.NotContains(t, repealed, fixture.ImmobilierID)
}

func Test_Parents(t *testing.T) {
	// setup
	givenArchive(t)

	// act
	code, stdout, stderr := runCommand(t, "parents", fixture.ArticleL2232_13NewID, "--date", "2017-01-01")

	// assert
	require.Equal(t, exitOK, code, stderr)

	var parents []map[string]any
	require.NoError(t, jsonAPI.UnmarshalFromString(stdout, &parents))
	require.Len(t, parents, 3)
	assert.Equal(t, "Code du travail", parents[0]["titre"])
	assert.Equal(t, "Partie législative", parents[1]["titre"])
	assert.Equal(t, fixture.NegociationSectionID, parents[2]["id"])
}

func Test_Article(t *testing.T) {
	// setup
	givenArchive(t)

	// act
	code, stdout, stderr := runCommand(t, "article", fixture.ArticleL2232_13NewID)

	// assert
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, `"titre":"Article L2232-13"`)
}

func Test_ExitCodes(t *testing.T) {
	givenArchive(t)

	testCases := []struct {
		name string
		args []string
		code int
	}{
		{name: "unknown root", args: []string{"structure", fixture.UnknownElementID}, code: exitNotFound},
		{name: "missing article", args: []string{"article", fixture.DanglingArticleID}, code: exitNotFound},
		{name: "invalid date", args: []string{"full", fixture.CodeTravailID, "--date", "2017-13-45"}, code: exitInvalidDate},
		{name: "date with trailing text", args: []string{"structure", fixture.CodeTravailID, "--date", "2017-01-01Tgarbage"}, code: exitInvalidDate},
		{name: "unknown parents", args: []string{"parents", fixture.UnknownElementID}, code: exitNotFound},
		{name: "parents at an invalid date", args: []string{"parents", fixture.ArticleL2232_13NewID, "--date", "2017-02-30"}, code: exitInvalidDate},
		{name: "missing argument", args: []string{"dates"}, code: exitFailure},
		{name: "bad configuration", args: []string{"texts", "--log-level", "chatty"}, code: exitFailure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, _, stderr := runCommand(t, tc.args...)

			assert.Equal(t, tc.code, code)
			assert.Contains(t, stderr, "legisnap:")
		})
	}
}

func Test_Config_PrintsEffectiveConfiguration(t *testing.T) {
	// setup
	t.Setenv("LEGISNAP_DATABASE_DRIVER", "sqlite")

	// act
	code, stdout, stderr := runCommand(t, "config", "--depth", "0")

	// assert
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "driver: sqlite")
	assert.Contains(t, stdout, "structure_depth: 0")
	assert.Contains(t, stdout, "adjacency: sommaires")
}

func Test_MetricsTextfileWithCache(t *testing.T) {
	// setup
	givenArchive(t)
	metricsPath := filepath.Join(t.TempDir(), "legisnap.prom")

	// act
	code, _, stderr := runCommand(t, "full", fixture.NegociationSectionID,
		"--date", "2017-01-01",
		"--cache",
		"--metrics", "prometheus",
		"--metrics-out", metricsPath,
	)

	// assert
	require.Equal(t, exitOK, code, stderr)

	content, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "legisnapshot_request_duration_seconds_count")
	assert.Contains(t, string(content), "legisnapshot_sql_query_duration_seconds_count")
	assert.Contains(t, string(content), "legisnapshot_cache_misses_total 1")
}

func Test_DebugLogsGoToStderr(t *testing.T) {
	// setup
	givenArchive(t)

	// act
	code, stdout, stderr := runCommand(t, "dates", fixture.CodeEnvironnementID, "--log-level", "debug", "--log-format", "json")

	// assert
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stderr, `"msg":"executed sql for: validity_dates"`)
	assert.NotContains(t, stdout, "executed sql")
}
