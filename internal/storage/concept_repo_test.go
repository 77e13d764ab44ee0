package storage

import (
	"context"
	"errors"
	"testing"
)

func TestConceptRepo_InsertMany(t *testing.T) {
	db := newTestDB(t)
	repo := NewConceptRepo(db)
	ctx := context.Background()

	doc := testDocument("concepts")
	if err := NewDocumentRepo(db).Create(ctx, doc, []string{"a"}, [][]float32{{1}}, nil); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	first := []*ConceptRecord{
		{DocumentID: doc.ID, Main: "Photosynthesis", Sub: "Light reactions", Description: "d1"},
		{DocumentID: doc.ID, Main: "Photosynthesis", Sub: "Calvin cycle", Description: "d2"},
		{Main: "Orphan", Sub: "Orphan"},
	}
	n, err := repo.InsertMany(ctx, first)
	if err != nil {
		t.Fatalf("InsertMany() error = %v", err)
	}
	if n != 3 {
		t.Errorf("InsertMany() inserted %d, want 3", n)
	}
	for _, c := range first {
		if c.ID == "" {
			t.Errorf("InsertMany() did not assign ID to %q", c.Sub)
		}
	}

	again := []*ConceptRecord{
		{DocumentID: doc.ID, Main: "Photosynthesis", Sub: "Light reactions"},
		{Main: "Orphan", Sub: "Orphan"},
		{DocumentID: doc.ID, Main: "Respiration", Sub: "Glycolysis"},
	}
	n, err = repo.InsertMany(ctx, again)
	if err != nil {
		t.Fatalf("InsertMany() second call error = %v", err)
	}
	if n != 1 {
		t.Errorf("InsertMany() second call inserted %d, want 1", n)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 4 {
		t.Errorf("List() = %d concepts, want 4", len(all))
	}

	byDoc, err := repo.ListByDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("ListByDocument() error = %v", err)
	}
	if len(byDoc) != 3 {
		t.Errorf("ListByDocument() = %d concepts, want 3", len(byDoc))
	}
}

func TestConceptRepo_UpdateMastery(t *testing.T) {
	db := newTestDB(t)
	repo := NewConceptRepo(db)
	ctx := context.Background()

	concepts := []*ConceptRecord{
		{Main: "Cells", Sub: "Membrane", MasteryLevel: 1, Progress: 50},
		{Main: "Cells", Sub: "Nucleus", MasteryLevel: 1, Progress: 50},
		{Main: "Genetics", Sub: "Genetics", MasteryLevel: 0},
	}
	if _, err := repo.InsertMany(ctx, concepts); err != nil {
		t.Fatalf("InsertMany() error = %v", err)
	}

	levelUp := func(level, progress int) (int, int) { return level + 1, 0 }

	tests := []struct {
		name      string
		ref       string
		wantCount int
		wantErr   error
	}{
		{name: "by main label", ref: "Cells", wantCount: 2},
		{name: "by id updates siblings", ref: concepts[0].ID, wantCount: 2},
		{name: "unknown ref", ref: "Astronomy", wantErr: ErrNotFound},
		{name: "blank ref", ref: "  ", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := repo.UpdateMastery(ctx, tt.ref, levelUp)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("UpdateMastery() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateMastery() error = %v", err)
			}
			if len(updated) != tt.wantCount {
				t.Errorf("UpdateMastery() updated %d, want %d", len(updated), tt.wantCount)
			}
			for _, c := range updated {
				if c.Main != "Cells" {
					t.Errorf("updated unexpected concept %q", c.Main)
				}
			}
		})
	}

	got, err := repo.Get(ctx, concepts[1].ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.MasteryLevel != 3 || got.Progress != 0 {
		t.Errorf("after two level-ups = %d/%d, want 3/0", got.MasteryLevel, got.Progress)
	}

	untouched, err := repo.Get(ctx, concepts[2].ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if untouched.MasteryLevel != 0 {
		t.Errorf("unrelated concept level = %d, want 0", untouched.MasteryLevel)
	}
}

func TestConceptRepo_Get_NotFound(t *testing.T) {
	repo := NewConceptRepo(newTestDB(t))
	if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestConceptRepo_LabelMasteryShared(t *testing.T) {
	db := newTestDB(t)
	repo := NewConceptRepo(db)
	docs := NewDocumentRepo(db)
	ctx := context.Background()

	first, second := testDocument("go-basics"), testDocument("go-advanced")
	for _, doc := range []*DocumentRecord{first, second} {
		if err := docs.Create(ctx, doc, []string{"a"}, [][]float32{{1}}, nil); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	if _, err := repo.InsertMany(ctx, []*ConceptRecord{{DocumentID: first.ID, Main: "Go", Sub: "Goroutines"}}); err != nil {
		t.Fatalf("InsertMany() error = %v", err)
	}
	if _, err := repo.UpdateMastery(ctx, "Go", func(level, progress int) (int, int) { return level + 1, 0 }); err != nil {
		t.Fatalf("UpdateMastery() error = %v", err)
	}

	late := &ConceptRecord{DocumentID: second.ID, Main: "Go", Sub: "Channels"}
	if _, err := repo.InsertMany(ctx, []*ConceptRecord{late}); err != nil {
		t.Fatalf("InsertMany() error = %v", err)
	}
	if late.MasteryLevel != 1 || late.Progress != 0 {
		t.Errorf("new concept under a practiced label = %d/%d, want 1/0", late.MasteryLevel, late.Progress)
	}

	calls := 0
	updated, err := repo.UpdateMastery(ctx, "Go", func(level, progress int) (int, int) {
		calls++
		return level, progress + 25
	})
	if err != nil {
		t.Fatalf("UpdateMastery() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("update applied %d times, want once per label", calls)
	}
	if len(updated) != 2 || updated[0].MasteryLevel != 1 || updated[0].Progress != 25 {
		t.Fatalf("UpdateMastery() = %+v, want two concepts at 1/25", updated)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	for _, c := range all {
		if c.MasteryLevel != 1 || c.Progress != 25 {
			t.Errorf("%s/%s stored at %d/%d, want 1/25", c.Main, c.Sub, c.MasteryLevel, c.Progress)
		}
	}
}
