package models

// SystemSettings is the singleton site configuration record.
//
// OwnerUsername is consulted exactly once per user, at registration: a new
// account whose username matches it is created with the owner role. Changing
// the setting later never reassigns roles on existing accounts.
type SystemSettings struct {
	EnrollmentYears   []int  `json:"enrollmentYears"`
	ClassNumbers      []int  `json:"classNumbers"`
	AllowRegistration bool   `json:"allowRegistration"`
	OwnerUsername     string `json:"ownerUsername"`
}

// SettingsUpdate carries a partial settings change; nil fields are left as-is.
type SettingsUpdate struct {
	EnrollmentYears   []int   `json:"enrollmentYears,omitempty"`
	ClassNumbers      []int   `json:"classNumbers,omitempty"`
	AllowRegistration *bool   `json:"allowRegistration,omitempty"`
	OwnerUsername     *string `json:"ownerUsername,omitempty"`
}
