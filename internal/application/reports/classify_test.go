package reports

import (
	"reflect"
	"testing"

	domain "github.com/bryanwahyu/rxscan/internal/domain/reports"
	"github.com/bryanwahyu/rxscan/internal/domain/substances"
)

var testCatalog = []substances.Substance{
	{Name: "Ibuprofeno", NormalizedName: "ibuprofen", Category: "C", Description: "Evitar en el tercer trimestre."},
	{Name: "Ácido fólico", Category: "A", Description: "Recomendado."},
	{Name: "Warfarina", Category: "X", Description: "Contraindicado."},
}

func TestClassify(t *testing.T) {
	idx := NewIndex(testCatalog)
	known, unknown := Classify([]string{
		"ibuprofen", "Misterol", "ACIDO FOLICO", "Ibuprofeno", "misterol", " ", "Zentoxina",
	}, idx)

	wantKnown := []domain.KnownSubstance{
		{Name: "Ibuprofeno", Category: "C", Description: "Evitar en el tercer trimestre."},
		{Name: "Ácido fólico", Category: "A", Description: "Recomendado."},
	}
	if !reflect.DeepEqual(known, wantKnown) {
		t.Fatalf("known = %+v", known)
	}
	if !reflect.DeepEqual(unknown, []string{"Misterol", "Zentoxina"}) {
		t.Fatalf("unknown = %v", unknown)
	}
}

func TestClassifyEmptyInputGivesEmptyLists(t *testing.T) {
	known, unknown := Classify(nil, NewIndex(testCatalog))
	if known == nil || unknown == nil || len(known) != 0 || len(unknown) != 0 {
		t.Fatalf("expected empty non-nil lists, got %#v %#v", known, unknown)
	}
}

func TestIndexFirstRowWins(t *testing.T) {
	idx := NewIndex([]substances.Substance{
		{Name: "Paracetamol", NormalizedName: "acetaminofen", Category: "B"},
		{Name: "Acetaminofén", Category: "C"},
	})
	s, ok := idx.Lookup("Acetaminofen")
	if !ok || s.Name != "Paracetamol" {
		t.Fatalf("expected first row to win, got %+v %v", s, ok)
	}
	if idx.Len() != 2 {
		t.Fatalf("Len() = %d", idx.Len())
	}
}
