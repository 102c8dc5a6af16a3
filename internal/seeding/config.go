package seeding

// Config holds configuration for the seed data generator.
type Config struct {
	NumDimensions          int     // Number of rubric dimensions
	NumSubmissions         int     // Number of submissions
	ReviewersPerSubmission int     // Assessments generated per submission
	Noise                  float64 // Per-reviewer deviation from the true quality, as a fraction of the scale
	Seed                   int64   // Random seed; same seed reproduces the same data set
}

// Stats holds generation statistics.
type Stats struct {
	Dimensions  int
	Submissions int
	Assessments int
	Grades      int
}
