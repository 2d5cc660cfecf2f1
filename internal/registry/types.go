// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

// ClinicalTrials.gov API v2 JSON structures. Each upstream module gets an
// explicit struct with optional fields; the response is validated once at
// the boundary instead of traversed dynamically.

type studiesResponse struct {
	Studies       []study `json:"studies"`
	NextPageToken string  `json:"nextPageToken"`
}

type study struct {
	ProtocolSection *protocolSection `json:"protocolSection"`
}

type protocolSection struct {
	Identification *identificationModule `json:"identificationModule"`
	Status         *statusModule         `json:"statusModule"`
	Description    *descriptionModule    `json:"descriptionModule"`
	Design         *designModule         `json:"designModule"`
	Conditions     *conditionsModule     `json:"conditionsModule"`
	Eligibility    *eligibilityModule    `json:"eligibilityModule"`
	Contacts       *contactsModule       `json:"contactsLocationsModule"`
	Arms           *armsModule           `json:"armsInterventionsModule"`
	Sponsor        *sponsorModule        `json:"sponsorCollaboratorsModule"`
}

type identificationModule struct {
	NCTID         string `json:"nctId"`
	BriefTitle    string `json:"briefTitle"`
	OfficialTitle string `json:"officialTitle"`
}

type statusModule struct {
	OverallStatus   string     `json:"overallStatus"`
	StartDateStruct *dateValue `json:"startDateStruct"`
}

type dateValue struct {
	Date string `json:"date"`
}

type descriptionModule struct {
	BriefSummary string `json:"briefSummary"`
}

type designModule struct {
	Phases    []string `json:"phases"`
	StudyType string   `json:"studyType"`
}

type conditionsModule struct {
	Conditions []string `json:"conditions"`
}

type eligibilityModule struct {
	EligibilityCriteria string   `json:"eligibilityCriteria"`
	Sex                 string   `json:"sex"`
	MinimumAge          string   `json:"minimumAge"`
	MaximumAge          string   `json:"maximumAge"`
	StdAges             []string `json:"stdAges"`
}

type contactsModule struct {
	Locations []locationEntry `json:"locations"`
}

type locationEntry struct {
	Facility string `json:"facility"`
	City     string `json:"city"`
	State    string `json:"state"`
	Country  string `json:"country"`
}

type armsModule struct {
	Interventions []interventionEntry `json:"interventions"`
}

type interventionEntry struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type sponsorModule struct {
	LeadSponsor *sponsorEntry `json:"leadSponsor"`
}

type sponsorEntry struct {
	Name string `json:"name"`
}
