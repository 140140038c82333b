package revision

import (
	"encoding/json"
	"os"
)

// state is the persisted JSON layout. The shape is fixed:
// {"meta": {"name", "propositions"}, "beliefs": {"K", "core"},
// "entrenchment": {sentence: rank}}.
type state struct {
	Meta struct {
		Name         string   `json:"name"`
		Propositions []string `json:"propositions"`
	} `json:"meta"`
	Beliefs struct {
		K    []string `json:"K"`
		Core []string `json:"core"`
	} `json:"beliefs"`
	Entrenchment map[string]int `json:"entrenchment"`
}

// MarshalState encodes the agent in the persisted JSON layout.
func (a *Agent) MarshalState() ([]byte, error) {
	var st state
	st.Meta.Name = a.name
	st.Meta.Propositions = a.Propositions()
	st.Beliefs.K = a.Beliefs()
	st.Beliefs.Core = a.Core()
	st.Entrenchment = a.Entrenchment()
	return json.MarshalIndent(st, "", "  ")
}

// UnmarshalState reconstructs an agent from the persisted JSON layout.
// The worlds space is rebuilt from the proposition list length.
func UnmarshalState(data []byte) (*Agent, error) {
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return NewWithState(st.Meta.Name, st.Meta.Propositions, st.Beliefs.K, st.Beliefs.Core, st.Entrenchment)
}

// Load reads an agent from a JSON state file.
func Load(path string) (*Agent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return UnmarshalState(data)
}

// Save writes the agent to a JSON state file.
func (a *Agent) Save(path string) error {
	data, err := a.MarshalState()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
