package domain

type CourseState string

const (
	CoursePlanned CourseState = "PLANNED"
	CourseOpen    CourseState = "OPEN"
)

// Course is a training course that can be scheduled and later opened for enrollment.
type Course struct {
	Code      int         `json:"code"`
	Title     string      `json:"title"`
	StartDate Date        `json:"start_date"`
	Seats     int         `json:"seats"`
	State     CourseState `json:"state"`
}

func (c Course) IsOpen() bool {
	return c.State == CourseOpen
}

// EnrollmentPeriod is the window during which members may enroll in a course.
// A course owns at most one period and the period is never changed after creation.
type EnrollmentPeriod struct {
	CourseCode int  `json:"course_code"`
	OpensOn    Date `json:"opens_on"`
	ClosesOn   Date `json:"closes_on"`
	Seats      int  `json:"seats"`
}

// OpenCourse is the read projection returned when listing courses with an open period.
type OpenCourse struct {
	Course
	OpensOn   Date `json:"opens_on"`
	ClosesOn  Date `json:"closes_on"`
	SeatsLeft int  `json:"seats_left"`
}
