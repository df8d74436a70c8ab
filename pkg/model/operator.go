// pkg/model/operator.go
package model

import "time"

// Operator is one entry of the ERP resource directory.
type Operator struct {
	Code string  `db:"Coderessource" json:"operateur"`
	Name string  `db:"Designation1" json:"nom"`
	Type *string `db:"Typeressource" json:"type"`
}

// BadgedOperator is an operator that clocked activity on a given day,
// with aggregates over their sessions.
type BadgedOperator struct {
	Code         string `db:"operateur" json:"operateur"`
	Name         string `db:"nom" json:"nom"`
	Type         string `db:"type" json:"type"`
	SessionCount int    `db:"nombre_sessions" json:"nombre_sessions"`
	LastActivity string `db:"derniere_activite" json:"derniere_activite"`
	State        string `db:"statut" json:"statut"`
	Launches     string `db:"lancements" json:"lancements"`
	Phases       string `db:"phases" json:"phases"`
	Stations     string `db:"postes" json:"postes"`
}

// SessionRecord is one row of the per-operator work session tables
// (in-progress or finished).
type SessionRecord struct {
	ID         string     `json:"id"`
	Operator   string     `json:"operateur"`
	Name       string     `json:"nom"`
	LaunchCode string     `json:"codeLancement"`
	Phase      string     `json:"phase"`
	RubricCode string     `json:"codeRubrique"`
	StartedAt  *time.Time `json:"heureDebut"`
	EndedAt    *time.Time `json:"heureFin"`
	State      string     `json:"statut"`
	WorkDay    time.Time  `json:"dateTravail"`
	Editable   bool       `json:"peutEtreModifie"`
}

// HistoryEntry is one finished work record of an operator's history.
type HistoryEntry struct {
	RecordNo   string    `json:"noEnreg"`
	Operator   string    `json:"ident,omitempty"`
	LaunchCode string    `json:"codeLanctImprod"`
	Phase      string    `json:"phase"`
	RubricCode string    `json:"codeRubrique"`
	Minutes    int       `json:"varNumUtil8"`
	Seconds    int       `json:"varNumUtil9"`
	State      string    `json:"statut,omitempty"`
	WorkDay    time.Time `json:"dateTravail"`
}

// LaunchStatus aggregates the day's operations of one launch code/phase pair.
type LaunchStatus struct {
	LaunchCode      string  `json:"codeLancement"`
	Phase           string  `json:"phase"`
	Station         string  `json:"poste"`
	LeadOperator    string  `json:"operateurPrincipal"`
	OperatorName    string  `json:"nomOperateur"`
	State           string  `json:"statutGlobal"`
	OperationCount  int     `json:"nbOperations"`
	PercentComplete float64 `json:"pourcentageComplete"`
	TotalSeconds    int64   `json:"dureeTotale"`
}

// LTCData is the phase/rubric lookup result for one launch code.
type LTCData struct {
	Phase      string `json:"phase"`
	RubricCode string `json:"codeRubrique"`
}
