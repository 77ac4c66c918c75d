package contracts

import (
	"encoding/json"

	"xolium-sdk/internal/sdkerr"
	"xolium-sdk/internal/validation"
)

// ProgramAddresses are the deployed program IDs the SDK talks to.
type ProgramAddresses struct {
	UtilityProgramID string `json:"utilityProgramId" yaml:"utility_program_id"`
}

// Validate checks every address.
func (a ProgramAddresses) Validate() error {
	if err := ValidatePublicKey(a.UtilityProgramID); err != nil {
		return sdkerr.InvalidInput("Invalid program addresses", []validation.Issue{
			{Path: "utilityProgramId", Message: err.Error()},
		})
	}
	return nil
}

// ParseProgramAddresses strictly decodes and validates program addresses.
func ParseProgramAddresses(data []byte) (ProgramAddresses, error) {
	var a ProgramAddresses
	if issues := validation.DecodeStrict(data, &a, "utilityProgramId"); !issues.OK() {
		return ProgramAddresses{}, issues.InvalidInput("Invalid program addresses")
	}
	if err := a.Validate(); err != nil {
		return ProgramAddresses{}, err
	}
	return a, nil
}

// AnchorIDL is an Anchor program interface description. Only the envelope
// is checked; every other field is kept verbatim in Extra.
type AnchorIDL struct {
	Version      string
	Name         string
	Instructions []json.RawMessage
	Extra        map[string]json.RawMessage
}

// ParseAnchorIDL decodes an IDL, requiring non-empty version and name and an
// instructions array.
func ParseAnchorIDL(data []byte) (AnchorIDL, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return AnchorIDL{}, sdkerr.InvalidInput("Invalid Anchor IDL", []validation.Issue{
			{Message: "expected a JSON object: " + err.Error()},
		})
	}

	var (
		idl    AnchorIDL
		issues []validation.Issue
	)
	idl.Version = requiredString(fields, "version", &issues)
	idl.Name = requiredString(fields, "name", &issues)

	if raw, ok := fields["instructions"]; !ok {
		issues = append(issues, validation.Issue{Path: "instructions", Message: "required"})
	} else if err := json.Unmarshal(raw, &idl.Instructions); err != nil || idl.Instructions == nil {
		issues = append(issues, validation.Issue{Path: "instructions", Message: "must be an array"})
	}

	if len(issues) > 0 {
		return AnchorIDL{}, sdkerr.InvalidInput("Invalid Anchor IDL", issues)
	}

	idl.Extra = make(map[string]json.RawMessage)
	for k, v := range fields {
		switch k {
		case "version", "name", "instructions":
		default:
			idl.Extra[k] = v
		}
	}
	return idl, nil
}

func requiredString(fields map[string]json.RawMessage, name string, issues *[]validation.Issue) string {
	raw, ok := fields[name]
	if !ok {
		*issues = append(*issues, validation.Issue{Path: name, Message: "required"})
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		*issues = append(*issues, validation.Issue{Path: name, Message: "must be a non-empty string"})
		return ""
	}
	return s
}
