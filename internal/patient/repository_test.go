package patient

import (
	"context"
	"testing"
)

func boardFixture() []Patient {
	return []Patient{
		{ID: "P-001", Name: "Ravi Sharma", Triage: TriageRed},
		{ID: "P-002", Name: "Meera Iyer", Triage: TriageYellow},
		{ID: "P-003", Name: "Ravi Varma", Triage: TriageGreen},
	}
}

func TestLookup(t *testing.T) {
	board := boardFixture()

	tests := []struct {
		name       string
		identifier string
		wantID     string
	}{
		{"exact id", "P-002", "P-002"},
		{"id case insensitive", "p-001", "P-001"},
		{"full name", "Meera Iyer", "P-002"},
		{"name fragment", "iyer", "P-002"},
		{"ambiguous picks first", "ravi", "P-001"},
		{"id beats name substring", "P-003", "P-003"},
		{"no match", "nobody", ""},
		{"empty identifier", "  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lookup(board, tt.identifier)
			if tt.wantID == "" {
				if got != nil {
					t.Errorf("Lookup(%q) = %v, want nil", tt.identifier, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Lookup(%q) = nil, want %s", tt.identifier, tt.wantID)
			}
			if got.ID != tt.wantID {
				t.Errorf("Lookup(%q) = %s, want %s", tt.identifier, got.ID, tt.wantID)
			}
		})
	}
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(boardFixture()...)

	t.Run("find by id", func(t *testing.T) {
		p, err := repo.FindByID(ctx, "P-001")
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if p == nil || p.Name != "Ravi Sharma" {
			t.Errorf("FindByID(P-001) = %v", p)
		}

		missing, err := repo.FindByID(ctx, "P-999")
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if missing != nil {
			t.Error("FindByID for an unknown id should return nil")
		}
	})

	t.Run("list preserves insertion order", func(t *testing.T) {
		list, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(list) != 3 {
			t.Fatalf("List returned %d patients, want 3", len(list))
		}
		if list[0].ID != "P-001" || list[2].ID != "P-003" {
			t.Errorf("List order = %s...%s, want P-001...P-003", list[0].ID, list[2].ID)
		}
	})

	t.Run("update mutates the stored record", func(t *testing.T) {
		err := repo.UpdateByID(ctx, "P-002", func(p *Patient) {
			p.Disposition = "admitted"
		})
		if err != nil {
			t.Fatalf("UpdateByID failed: %v", err)
		}

		p, _ := repo.FindByID(ctx, "P-002")
		if p.Disposition != "admitted" {
			t.Errorf("Disposition = %q, want admitted", p.Disposition)
		}
	})

	t.Run("returned copies do not alias the store", func(t *testing.T) {
		p, _ := repo.FindByID(ctx, "P-001")
		p.Name = "Changed"

		again, _ := repo.FindByID(ctx, "P-001")
		if again.Name != "Ravi Sharma" {
			t.Error("FindByID must return a copy, not the stored record")
		}
	})
}
