// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package requirements

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Najam-Usman/uiuc-course-planner/pkg/types"
)

const propertyRuns = 300

var (
	titleFragments = []string{
		"Humanities and the Arts", "Social and Behavioral Sciences", "Composition I",
		"Advanced Composition", "Quantitative Reasoning II", "Cultural Studies: Non-Western",
		"GENERAL EDUCATION", "Required Computer Science Foundation", "CS Technical Electives",
		"Systems", "Statistics Core", "Free Electives", "TOTAL HOURS", "Residency Requirement",
		"NEEDS: 1 SUB-GROUP", "Combined GPA", "",
	}
	lineFragments = []string{
		"NEEDS: 1 COURSE", "NEEDS: 2 COURSES", "NEEDS: 6.0 HOURS", "NEEDS: 2 SUB-GROUPS",
		"SELECT FROM: CS 233, 341, 374", "SELECT FROM: STAT 410, STAT 425, STAT 426",
		"ONE OF THE FOLLOWING COMBINATIONS: CS 233 CS 340", "HIST 999", "CS 099",
		"EARNED: 3 HOURS", "COMPLETED", "1 COURSE TAKEN", "300 OR 400 LEVEL",
		"MATH 415/416", "FA23 CS 124 4.0 A", "",
	}
	takenPool = []string{"CS 233", "CS 341", "STAT 410", "MATH 415", "CS 124"}
)

func randomAudit(r *rand.Rand) ([]types.AuditSection, TakenSet) {
	sections := make([]types.AuditSection, r.IntN(12))
	for i := range sections {
		title := titleFragments[r.IntN(len(titleFragments))]
		if title != "" && r.IntN(3) == 0 {
			title = strconv.Itoa(r.IntN(12)+1) + ") " + title
		}
		lines := make([]string, r.IntN(4))
		for j := range lines {
			lines[j] = lineFragments[r.IntN(len(lineFragments))]
		}
		sections[i] = types.AuditSection{Title: title, Lines: lines}
	}

	taken := NewTakenSet()
	for _, c := range takenPool {
		if r.IntN(2) == 0 {
			taken[c] = struct{}{}
		}
	}
	return sections, taken
}

func sectionIndex(t *testing.T, id string) int {
	t.Helper()
	_, idx, ok := strings.Cut(id, "_")
	require.True(t, ok, "malformed id %q", id)
	i, err := strconv.Atoi(idx)
	require.NoError(t, err)
	return i
}

func TestExtractProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for run := 0; run < propertyRuns; run++ {
		sections, taken := randomAudit(r)
		got := Extract(sections, taken)

		t.Run(fmt.Sprintf("run%d", run), func(t *testing.T) {
			if diff := cmp.Diff(got, Extract(sections, taken)); diff != "" {
				t.Fatalf("not idempotent (-first +second):\n%s", diff)
			}

			used := make(map[int]string)
			check := func(prefix string, needs []types.RequirementNeed) {
				seen := make(map[string]bool)
				last := -1
				for _, n := range needs {
					require.True(t, strings.HasPrefix(n.ID, prefix+"_"), "id %q", n.ID)
					i := sectionIndex(t, n.ID)
					require.Less(t, i, len(sections))
					assert.Greater(t, i, last, "needs out of input order")
					last = i

					if other, dup := used[i]; dup {
						t.Errorf("section %d in both %s and %s", i, other, prefix)
					}
					used[i] = prefix

					s := sections[i]
					upper := strings.ToUpper(s.Title)
					assert.False(t, containsAny(upper, noiseTitles), "denylisted title %q emitted", s.Title)
					assert.NotContains(t, strings.ToUpper(s.Title+" "+strings.Join(s.Lines, " ")), "COMPLETED")
					assert.True(t, strings.HasPrefix(n.NeedText, "NEEDS: "), "need text %q", n.NeedText)

					key := n.Title + "|" + n.NeedText
					assert.False(t, seen[key], "duplicate %s need %q", prefix, key)
					seen[key] = true

					if n.Options != nil {
						assert.NotEmpty(t, n.Options)
					}
					for _, o := range n.Options {
						assert.False(t, taken.Has(o), "taken course %s offered", o)
						_, num, _ := strings.Cut(o, " ")
						v, err := strconv.Atoi(num)
						require.NoError(t, err)
						assert.True(t, v >= 100 && v < 600 && v != 999, "bad course number in %s", o)
					}
				}
			}
			check("gened", got.GenEds)
			check("courses", got.Courses)
		})
	}
}

func TestExtract_ConcurrentCallsAgree(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	sections, taken := randomAudit(r)
	sections = append(sections, sampleAudit()...)
	want := Extract(sections, taken)

	var wg sync.WaitGroup
	results := make([]types.ActionableNeeds, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = Extract(sections, taken)
		}()
	}
	wg.Wait()

	for i, got := range results {
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("goroutine %d disagrees (-want +got):\n%s", i, diff)
		}
	}
}
