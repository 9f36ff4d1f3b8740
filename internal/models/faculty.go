// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

// Faculty identifies the organisational unit a lecturer belongs to.
type Faculty string

const (
	FacultyFMB   Faculty = "FMB"   // Mechanical Engineering
	FacultyFVST  Faculty = "FVST"  // Process and Systems Engineering
	FacultyFEIT  Faculty = "FEIT"  // Electrical Engineering and Information Technology
	FacultyFIN   Faculty = "FIN"   // Computer Science
	FacultyFMA   Faculty = "FMA"   // Mathematics
	FacultyFNW   Faculty = "FNW"   // Natural Sciences
	FacultyFME   Faculty = "FME"   // Medicine
	FacultyFHW   Faculty = "FHW"   // Humanities, Social Sciences and Education
	FacultyFWW   Faculty = "FWW"   // Economics and Management
	FacultyOther Faculty = "OTHER" // everything else
)

var faculties = []Faculty{
	FacultyFMB, FacultyFVST, FacultyFEIT, FacultyFIN, FacultyFMA,
	FacultyFNW, FacultyFME, FacultyFHW, FacultyFWW, FacultyOther,
}

// Faculties returns all faculties in display order.
func Faculties() []Faculty {
	out := make([]Faculty, len(faculties))
	copy(out, faculties)
	return out
}

// Valid reports whether f is one of the known faculties.
func (f Faculty) Valid() bool {
	for _, known := range faculties {
		if f == known {
			return true
		}
	}
	return false
}

func (f Faculty) String() string { return string(f) }
