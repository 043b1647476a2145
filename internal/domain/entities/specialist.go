package entities

// Specialist is one physician or specialty department extracted from a
// hospital's public pages.
type Specialist struct {
	Name        string `json:"name"`
	Specialty   string `json:"specialty"`
	Credentials string `json:"credentials"`
	Context     string `json:"context"`
	URL         string `json:"url"`
	Phone       string `json:"phone"`
}

// SpecialistQuery asks which physicians at a hospital treat a diagnosis.
type SpecialistQuery struct {
	URL          string `json:"url"`
	Diagnosis    string `json:"diagnosis"`
	HospitalName string `json:"hospital_name,omitempty"`
	Location     string `json:"location,omitempty"`
}
