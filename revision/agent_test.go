package revision

import (
	"encoding/json"
	"path/filepath"
	"testing"
)

func newAgent(t *testing.T) *Agent {
	t.Helper()
	a, err := NewWithState("tester",
		[]string{"it rains", "the street is wet", "the sun shines"},
		[]string{"it rains", "the street is wet"},
		[]string{"the street is wet"},
		map[string]int{"it rains": 1, "the street is wet": 3},
	)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewAgent(t *testing.T) {
	a, err := New("empty", []string{"p", "q"})
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Beliefs()) != 0 {
		t.Errorf("new agent beliefs = %v, want empty", a.Beliefs())
	}
	if a.Space().NumWorlds() != 4 {
		t.Errorf("NumWorlds() = %d, want 4", a.Space().NumWorlds())
	}
	if got := a.Possibilities(); len(got) != 4 {
		t.Errorf("Possibilities() = %v, want all four worlds", got)
	}
}

func TestContract(t *testing.T) {
	a := newAgent(t)
	removed, err := a.Contract("it rains")
	if err != nil {
		t.Fatal(err)
	}
	if !equalStrings(removed, []string{"it rains"}) {
		t.Errorf("removed = %v, want [it rains]", removed)
	}
	// The core belief outranks the contraction and survives.
	if !equalStrings(a.Beliefs(), []string{"the street is wet"}) {
		t.Errorf("beliefs after contraction = %v", a.Beliefs())
	}
	// Worlds where "it rains" holds are gone: with 3 propositions those
	// are ids with the leading bit set.
	for _, w := range a.Possibilities() {
		if a.Space().Holds(w, 0) {
			t.Errorf("world %d still live after contracting proposition 0", w)
		}
	}
}

func TestContractDropsWeakerBeliefs(t *testing.T) {
	a, err := NewWithState("tester",
		[]string{"p", "q", "r"},
		[]string{"p", "q", "r"},
		nil,
		map[string]int{"p": 2, "q": 1, "r": 3},
	)
	if err != nil {
		t.Fatal(err)
	}
	removed, err := a.Contract("p")
	if err != nil {
		t.Fatal(err)
	}
	// q has rank 1 <= rank(p)=2 and is not core: it goes too.
	if !equalStrings(removed, []string{"p", "q"}) {
		t.Errorf("removed = %v, want [p q]", removed)
	}
	if !equalStrings(a.Beliefs(), []string{"r"}) {
		t.Errorf("beliefs = %v, want [r]", a.Beliefs())
	}
}

func TestContractUnknownProposition(t *testing.T) {
	a := newAgent(t)
	if _, err := a.Contract("nonsense"); err == nil {
		t.Error("Contract of unknown proposition expected error")
	}
}

func TestExpand(t *testing.T) {
	a := newAgent(t)
	if err := a.Expand("the sun shines"); err != nil {
		t.Fatal(err)
	}
	if !equalStrings(a.Beliefs(), []string{"it rains", "the street is wet", "the sun shines"}) {
		t.Errorf("beliefs = %v", a.Beliefs())
	}
	for _, w := range a.Possibilities() {
		if !a.Space().Holds(w, 2) {
			t.Errorf("world %d still live though proposition 2 is false there", w)
		}
	}
	// Expanding an existing belief does not duplicate it.
	if err := a.Expand("the sun shines"); err != nil {
		t.Fatal(err)
	}
	if len(a.Beliefs()) != 3 {
		t.Errorf("beliefs after double expand = %v", a.Beliefs())
	}
}

func TestExpandUnknownProposition(t *testing.T) {
	a := newAgent(t)
	if err := a.Expand("nonsense"); err == nil {
		t.Error("Expand of unknown proposition expected error")
	}
}

func TestCoreWorlds(t *testing.T) {
	a := newAgent(t)
	// Core = {"the street is wet"} = proposition index 1.
	for _, w := range a.CoreWorlds() {
		if !a.Space().Holds(w, 1) {
			t.Errorf("core world %d does not satisfy the core belief", w)
		}
	}
	if len(a.CoreWorlds()) != 4 {
		t.Errorf("CoreWorlds() count = %d, want 4", len(a.CoreWorlds()))
	}
}

func TestAddProposition(t *testing.T) {
	a, err := New("tester", []string{"p"})
	if err != nil {
		t.Fatal(err)
	}
	if err := a.AddProposition("q", true, 5); err != nil {
		t.Fatal(err)
	}
	if !equalStrings(a.Propositions(), []string{"p", "q"}) {
		t.Errorf("propositions = %v", a.Propositions())
	}
	if a.Space().NumWorlds() != 4 {
		t.Errorf("NumWorlds() after add = %d, want 4", a.Space().NumWorlds())
	}
	if !a.IsCore("q") || a.Rank("q") != 5 {
		t.Errorf("q core=%v rank=%d, want core rank 5", a.IsCore("q"), a.Rank("q"))
	}
	if !equalStrings(a.Beliefs(), []string{"q"}) {
		t.Errorf("beliefs = %v, want [q]", a.Beliefs())
	}
}

func TestRemoveProposition(t *testing.T) {
	a := newAgent(t)
	if err := a.RemoveProposition("the street is wet"); err == nil {
		t.Error("removing a core belief expected error")
	}
	if err := a.RemoveProposition("it rains"); err != nil {
		t.Fatal(err)
	}
	if !equalStrings(a.Propositions(), []string{"the street is wet", "the sun shines"}) {
		t.Errorf("propositions = %v", a.Propositions())
	}
	if a.Space().NumWorlds() != 4 {
		t.Errorf("NumWorlds() after removal = %d, want 4", a.Space().NumWorlds())
	}
}

func TestReset(t *testing.T) {
	a := newAgent(t)
	a.Reset(nil)
	if len(a.Beliefs()) != 0 {
		t.Errorf("beliefs after reset = %v, want empty", a.Beliefs())
	}
}

func TestStateRoundTrip(t *testing.T) {
	a := newAgent(t)
	data, err := a.MarshalState()
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"meta", "beliefs", "entrenchment"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("persisted state missing %q section", key)
		}
	}

	restored, err := UnmarshalState(data)
	if err != nil {
		t.Fatal(err)
	}
	if restored.Name() != a.Name() {
		t.Errorf("restored name = %q, want %q", restored.Name(), a.Name())
	}
	if !equalStrings(restored.Propositions(), a.Propositions()) {
		t.Errorf("restored propositions = %v", restored.Propositions())
	}
	if !equalStrings(restored.Beliefs(), a.Beliefs()) {
		t.Errorf("restored beliefs = %v", restored.Beliefs())
	}
	if !equalStrings(restored.Core(), a.Core()) {
		t.Errorf("restored core = %v", restored.Core())
	}
	if restored.Rank("the street is wet") != 3 {
		t.Errorf("restored rank = %d, want 3", restored.Rank("the street is wet"))
	}
}

func TestSaveLoad(t *testing.T) {
	a := newAgent(t)
	path := filepath.Join(t.TempDir(), "agent.json")
	if err := a.Save(path); err != nil {
		t.Fatal(err)
	}
	restored, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if restored.Name() != "tester" {
		t.Errorf("restored name = %q, want tester", restored.Name())
	}
	if !equalStrings(restored.Beliefs(), a.Beliefs()) {
		t.Errorf("restored beliefs = %v, want %v", restored.Beliefs(), a.Beliefs())
	}
}
