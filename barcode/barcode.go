// Package barcode interprets TCGA-style sample barcodes. A full barcode
// (e.g., TCGA-A7-A0CE-01A-11R-A00Z-07) encodes the patient in its first 12
// characters and the sample type in the two digits that follow; only the
// first digit of the sample type is needed to separate tumor from normal
// tissue.
package barcode

import "strings"

const (
	// PatientIDLength is the barcode prefix that identifies a patient
	// (project-site-participant, e.g. TCGA-A7-A0CE).
	PatientIDLength = 12

	// sampleTypeOffset is the zero-based offset of the sample type code
	// within a full barcode: the 14th character, one-based.
	sampleTypeOffset = 13

	// Tumor and Normal are the leading sample-type digits for solid tumor
	// (01-09) and normal control (10-19) samples.
	Tumor  = "0"
	Normal = "1"
)

var separators = strings.NewReplacer(".", "-", "_", "-")

// Normalize reduces any sample barcode to its canonical patient identifier:
// the first 12 characters, uppercased, with '.' and '_' separators unified
// to '-'. Normalize is idempotent.
func Normalize(id string) string {
	if len(id) > PatientIDLength {
		id = id[:PatientIDLength]
	}

	return strings.ToUpper(separators.Replace(id))
}

// SampleType returns the leading sample-type digit of a full barcode, or
// the empty string if the barcode is too short to carry one.
func SampleType(id string) string {
	if len(id) <= sampleTypeOffset {
		return ""
	}

	return string(id[sampleTypeOffset])
}

// IsTumor reports whether the barcode designates a tumor sample.
func IsTumor(id string) bool {
	return SampleType(id) == Tumor
}

// IsNormal reports whether the barcode designates a normal (control) sample.
func IsNormal(id string) bool {
	return SampleType(id) == Normal
}
