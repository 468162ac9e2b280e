// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonial-oss/vendor-risk/internal/query"
	"github.com/bonial-oss/vendor-risk/internal/risk"
	"github.com/bonial-oss/vendor-risk/internal/types"
)

var errBackend = errors.New("backend unavailable")

type fakeVendors struct {
	vendors []types.Vendor
	fail    bool
	seq     int
}

func (f *fakeVendors) ListVendors(context.Context) ([]types.Vendor, error) {
	if f.fail {
		return nil, errBackend
	}
	return append([]types.Vendor(nil), f.vendors...), nil
}

func (f *fakeVendors) CreateVendor(_ context.Context, in types.VendorInput) (*types.Vendor, error) {
	if f.fail {
		return nil, errBackend
	}
	f.seq++
	score := 50
	if in.RiskScore != nil {
		score = *in.RiskScore
	}
	v := types.Vendor{
		ID:               fmt.Sprintf("v%d", f.seq),
		Name:             in.Name,
		RiskScore:        score,
		RiskLevel:        risk.LevelForScore(score),
		ComplianceStatus: types.Partial,
	}
	f.vendors = append(f.vendors, v)
	return &v, nil
}

func (f *fakeVendors) UpdateVendor(_ context.Context, id string, patch types.VendorPatch) (*types.Vendor, error) {
	for i := range f.vendors {
		if f.vendors[i].ID == id {
			patch.Apply(&f.vendors[i])
			v := f.vendors[i]
			return &v, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeVendors) DeleteVendor(_ context.Context, id string) error {
	if f.fail {
		return errBackend
	}
	out := f.vendors[:0]
	for _, v := range f.vendors {
		if v.ID != id {
			out = append(out, v)
		}
	}
	f.vendors = out
	return nil
}

func (f *fakeVendors) BulkVendors(_ context.Context, req types.BulkVendorUpdate) (int, error) {
	n := 0
	for _, id := range req.IDs {
		for i := range f.vendors {
			if f.vendors[i].ID == id {
				req.Patch.Apply(&f.vendors[i])
				n++
			}
		}
	}
	return n, nil
}

func intPtr(i int) *int { return &i }

func TestVendorState_Actions(t *testing.T) {
	backend := &fakeVendors{}
	s := NewVendorState(backend)
	ctx := context.Background()

	var notified atomic.Int32
	unsubscribe := s.Subscribe(func() { notified.Add(1) })

	_, err := s.Create(ctx, types.VendorInput{Name: "Acme", RiskScore: intPtr(20)})
	require.NoError(t, err)
	_, err = s.Create(ctx, types.VendorInput{Name: "Beta", RiskScore: intPtr(90)})
	require.NoError(t, err)
	assert.Len(t, s.Vendors(), 2)
	assert.Equal(t, "Beta", s.Vendors()[0].Name, "new vendors are prepended")
	assert.False(t, s.Loading())
	assert.Equal(t, int32(4), notified.Load(), "begin and finish notify")

	unsubscribe()
	level := types.RiskLow
	v, err := s.Update(ctx, "v1", types.VendorPatch{RiskLevel: &level})
	require.NoError(t, err)
	assert.Equal(t, types.RiskLow, v.RiskLevel)
	assert.Equal(t, int32(4), notified.Load())

	counts := s.CountsByRiskLevel()
	assert.Equal(t, 2, counts[types.RiskLow])
	assert.Equal(t, 0, counts[types.RiskCritical])

	require.NoError(t, s.Delete(ctx, "v2"))
	require.Len(t, s.Vendors(), 1)
	assert.Equal(t, "v1", s.Vendors()[0].ID)
}

func TestVendorState_ErrorsAreRecorded(t *testing.T) {
	backend := &fakeVendors{fail: true}
	s := NewVendorState(backend)

	err := s.Fetch(context.Background())
	require.ErrorIs(t, err, errBackend)
	assert.Equal(t, errBackend.Error(), s.Err())
	assert.False(t, s.Loading())

	backend.fail = false
	require.NoError(t, s.Fetch(context.Background()))
	assert.Empty(t, s.Err(), "a successful action clears the last error")
}

func TestVendorState_Bulk(t *testing.T) {
	backend := &fakeVendors{vendors: []types.Vendor{
		{ID: "a", Name: "a", ComplianceStatus: types.Partial},
		{ID: "b", Name: "b", ComplianceStatus: types.Partial},
	}}
	s := NewVendorState(backend)
	require.NoError(t, s.Fetch(context.Background()))

	status := types.Compliant
	n, err := s.Bulk(context.Background(), types.BulkVendorUpdate{IDs: []string{"a", "b"}, Patch: types.VendorPatch{ComplianceStatus: &status}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, s.CountsByCompliance()[types.Compliant])
	assert.Equal(t, 2, s.Stats().Compliant)
}

func TestVendorState_Filtered(t *testing.T) {
	backend := &fakeVendors{vendors: []types.Vendor{
		{ID: "1", Name: "Zeta", RiskScore: 10, RiskLevel: types.RiskCritical},
		{ID: "2", Name: "alpha", RiskScore: 80, RiskLevel: types.RiskLow},
		{ID: "3", Name: "Mid", RiskScore: 55, RiskLevel: types.RiskMedium},
	}}
	s := NewVendorState(backend)
	require.NoError(t, s.Fetch(context.Background()))

	got := s.Filtered(query.VendorFilter{SortBy: query.SortByRiskScore, Descending: true})
	require.Len(t, got, 3)
	assert.Equal(t, []string{"2", "3", "1"}, []string{got[0].ID, got[1].ID, got[2].ID})

	got = s.Filtered(query.VendorFilter{RiskLevels: []types.RiskLevel{types.RiskCritical, types.RiskMedium}})
	require.Len(t, got, 2)
	assert.Equal(t, "Mid", got[0].Name)
}

type fakeAssessments struct {
	items map[string]*types.Assessment
}

func (f *fakeAssessments) ListAssessments(context.Context) ([]types.Assessment, error) {
	var out []types.Assessment
	for _, a := range f.items {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAssessments) CreateAssessment(_ context.Context, in types.AssessmentInput) (*types.Assessment, error) {
	a := &types.Assessment{ID: fmt.Sprintf("a%d", len(f.items)+1), Name: in.Name, Status: types.StatusInProgress, Answers: types.StringMap{}}
	f.items[a.ID] = a
	cp := *a
	return &cp, nil
}

func (f *fakeAssessments) AnswerAssessment(_ context.Context, id string, answers map[string]string) (*types.Assessment, error) {
	a := f.items[id]
	if a.Status == types.StatusCompleted {
		return nil, errors.New("assessment already completed")
	}
	for k, v := range answers {
		a.Answers[k] = v
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAssessments) CompleteAssessment(_ context.Context, id string) (*types.Assessment, error) {
	a := f.items[id]
	now := time.Now()
	a.Status = types.StatusCompleted
	a.CompletedAt = &now
	cp := *a
	return &cp, nil
}

func (f *fakeAssessments) DeleteAssessment(_ context.Context, id string) error {
	delete(f.items, id)
	return nil
}

func TestAssessmentState(t *testing.T) {
	backend := &fakeAssessments{items: map[string]*types.Assessment{}}
	s := NewAssessmentState(backend, nil)
	ctx := context.Background()

	a, err := s.Start(ctx, types.AssessmentInput{Name: "Q3"})
	require.NoError(t, err)

	_, err = s.Answer(ctx, a.ID, map[string]string{"gov-1": "maybe"})
	require.Error(t, err)
	assert.NotEmpty(t, s.Err())

	_, err = s.Answer(ctx, a.ID, map[string]string{"gov-1": "YES", "gov-2": "n/a"})
	require.NoError(t, err)
	answered, total, ok := s.Progress(a.ID)
	require.True(t, ok)
	assert.Equal(t, 2, answered)
	assert.Equal(t, 15, total)

	stored, _ := s.Get(a.ID)
	assert.Equal(t, "yes", stored.Answers["gov-1"])
	assert.Equal(t, "not_applicable", stored.Answers["gov-2"])

	_, err = s.Complete(ctx, a.ID)
	require.NoError(t, err)
	counts := s.CountsByStatus()
	assert.Equal(t, 1, counts[types.StatusCompleted])
	assert.Equal(t, 0, counts[types.StatusInProgress])
	assert.Equal(t, 1, s.Summary().Completed)

	_, err = s.Answer(ctx, a.ID, map[string]string{"gov-3": "no"})
	assert.Error(t, err)

	require.NoError(t, s.Delete(ctx, a.ID))
	assert.Empty(t, s.Assessments())
	_, _, ok = s.Progress(a.ID)
	assert.False(t, ok)
}

func TestAppState(t *testing.T) {
	s := NewAppState(DefaultPreferences())

	require.NoError(t, s.SetTheme(ThemeDark))
	assert.Error(t, s.SetTheme("neon"))
	require.NoError(t, s.SetLanguage("de"))
	assert.Error(t, s.SetLanguage("tlh"))
	assert.True(t, s.ToggleSidebar())

	prefs := s.Preferences()
	assert.Equal(t, ThemeDark, prefs.Theme)
	assert.Equal(t, "de", prefs.Language)
	assert.True(t, prefs.SidebarCollapsed)

	first := s.Notify(NotifyInfo, "SBOM uploaded")
	s.Notify(NotifyError, "upload failed")
	assert.Equal(t, 2, s.Unread())
	s.Dismiss(first)
	require.Len(t, s.Notifications(), 1)
	assert.Equal(t, "upload failed", s.Notifications()[0].Message)
	s.MarkAllRead()
	assert.Equal(t, 0, s.Unread())
}

func TestAppState_NotificationsAreBounded(t *testing.T) {
	s := NewAppState(DefaultPreferences())
	for i := 1; i <= maxNotifications+5; i++ {
		s.Notify(NotifyInfo, fmt.Sprintf("message %d", i))
	}
	notes := s.Notifications()
	require.Len(t, notes, maxNotifications)
	assert.Equal(t, "message 6", notes[0].Message)
	assert.Equal(t, fmt.Sprintf("message %d", maxNotifications+5), notes[len(notes)-1].Message)
}

func TestAppStateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.yaml")

	s, err := LoadAppState(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultPreferences(), s.Preferences())
	assert.Empty(t, s.Notifications())

	require.NoError(t, s.SetTheme(ThemeLight))
	s.ToggleSidebar()
	first := s.Notify(NotifySuccess, "SBOM uploaded")
	require.NoError(t, s.Save(path))

	loaded, err := LoadAppState(path)
	require.NoError(t, err)
	assert.Equal(t, s.Preferences(), loaded.Preferences())
	require.Len(t, loaded.Notifications(), 1)
	assert.Equal(t, "SBOM uploaded", loaded.Notifications()[0].Message)
	assert.Equal(t, 1, loaded.Unread())

	// Ids keep increasing across loads.
	second := loaded.Notify(NotifyInfo, "assessment completed")
	assert.NotEqual(t, first, second)
}

func TestLoadAppState_PreferencesOnlyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: dark\nlanguage: fr\nsidebar_collapsed: true\n"), 0o600))

	s, err := LoadAppState(path)
	require.NoError(t, err)
	assert.Equal(t, Preferences{Theme: ThemeDark, Language: "fr", SidebarCollapsed: true}, s.Preferences())
	assert.Empty(t, s.Notifications())

	require.NoError(t, os.WriteFile(path, []byte("theme: [\n"), 0o600))
	_, err = LoadAppState(path)
	assert.Error(t, err)
}
