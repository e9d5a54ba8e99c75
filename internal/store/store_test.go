// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/Najam-Usman/uiuc-course-planner/internal/audit"
	"github.com/Najam-Usman/uiuc-course-planner/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	// Deterministic, strictly increasing clock.
	base := time.Date(2025, 8, 25, 9, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return s
}

func ptr(f float64) *float64 { return &f }

func sampleAudit() *types.ParsedAudit {
	return &types.ParsedAudit{
		Meta: types.AuditMeta{Program: "Statistics & Computer Science", Degree: "BS", CatalogYear: "2023"},
		Counters: types.AuditCounters{
			EarnedHours: ptr(74),
			UIUCGPA:     ptr(3.71),
		},
		Courses: []types.ParsedCourse{
			{Term: "FA23", Subject: "CS", Number: "225", Credits: 4, Grade: "A", Status: types.StatusCompleted},
			{Term: "SP25", Subject: "STAT", Number: "410", Credits: 3, Status: types.StatusInProgress},
			{Term: "FA22", Subject: "PE", Number: "101", Credits: 1, Status: types.StatusIgnored},
		},
		Sections: []types.AuditSection{
			{
				Title: "Statistical Application Elective",
				Lines: []string{"NEEDS: 1 COURSE", "SELECT FROM: STAT 410, 425, 426"},
			},
		},
	}
}

func TestSaveAndLatest(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, "", sampleAudit(), true)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, DefaultUser, saved.UserID)
	assert.Equal(t, types.AuditStats{CoursesCompleted: 1, CoursesInProgress: 1, CoursesIgnored: 1}, saved.Stats)

	got, err := s.Latest(ctx, DefaultUser)
	require.NoError(t, err)
	if diff := cmp.Diff(saved, got); diff != "" {
		t.Errorf("Latest mismatch (-saved +got):\n%s", diff)
	}
}

func TestLatest_NewestWins(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, "u1", sampleAudit(), false)
	require.NoError(t, err)

	newer := sampleAudit()
	newer.Meta.CatalogYear = "2024"
	_, err = s.Save(ctx, "u1", newer, false)
	require.NoError(t, err)

	_, err = s.Save(ctx, "u2", sampleAudit(), false)
	require.NoError(t, err)

	got, err := s.Latest(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "2024", got.Meta.CatalogYear)
}

func TestLatest_NotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.Latest(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSave_WithoutSections(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, "u1", sampleAudit(), false)
	require.NoError(t, err)
	assert.Nil(t, saved.Sections)

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Sections)
	assert.True(t, audit.Needs(got.Audit(), nil).Empty())
}

func TestSave_NilAudit(t *testing.T) {
	s := testStore(t)
	_, err := s.Save(context.Background(), "u1", nil, true)
	assert.Error(t, err)
}

func TestRecordAudit_RecomputesNeeds(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, "u1", sampleAudit(), true)
	require.NoError(t, err)

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)

	needs := audit.Needs(got.Audit(), nil)
	require.Len(t, needs.Courses, 1)
	assert.Equal(t, "Statistical Application Elective", needs.Courses[0].Title)
	// STAT 410 is in progress, so it is not offered again.
	assert.Equal(t, []string{"STAT 425", "STAT 426"}, needs.Courses[0].Options)
}

func TestList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	var ids []string
	for n := 0; n < 3; n++ {
		rec, err := s.Save(ctx, "u1", sampleAudit(), false)
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	all, err := s.List(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)
	assert.Equal(t, ids[0], all[2].ID)

	limited, err := s.List(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, ids[2], limited[0].ID)

	none, err := s.List(ctx, "u2", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDelete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	rec, err := s.Save(ctx, "u1", sampleAudit(), false)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, rec.ID))

	_, err = s.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Delete(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, nil)
	require.NoError(t, err)
	rec, err := s.Save(context.Background(), "u1", sampleAudit(), true)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(dir, nil)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Latest(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
}

func TestExportJSON(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, "u1", sampleAudit(), true)
	require.NoError(t, err)
	_, err = s.Save(ctx, "u1", sampleAudit(), false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.ExportJSON(ctx, "u1", &buf))

	var records []Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Nil(t, records[0].Sections)
	assert.Len(t, records[1].Sections, 1)
	assert.Equal(t, "Statistics & Computer Science", records[1].Meta.Program)
}

func TestExportYAML(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, "u1", sampleAudit(), true)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.ExportYAML(ctx, "u1", &buf))

	var records []Record
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "u1", records[0].UserID)
	require.NotNil(t, records[0].Counters.UIUCGPA)
	assert.InDelta(t, 3.71, *records[0].Counters.UIUCGPA, 1e-9)
}

func TestExport_EmptyUser(t *testing.T) {
	s := testStore(t)

	var buf bytes.Buffer
	require.NoError(t, s.ExportJSON(context.Background(), "nobody", &buf))
	assert.JSONEq(t, "[]", buf.String())
}
