package domain

// ScheduledCourse is a single timetable entry for one day.
type ScheduledCourse struct {
	ClassSpan  string `json:"class_span"`  // lesson periods, e.g. "3,4"
	Course     string `json:"course"`      // course code
	CourseName string `json:"course_name"` // display name
	WeekSpan   string `json:"week_span"`   // teaching weeks, e.g. "1-16"
	CourseType string `json:"course_type"` // required / elective flag
	Teacher    string `json:"teacher"`
	WeekDay    int    `json:"week_day"` // 1 = Monday .. 7 = Sunday
	ClassRoom  string `json:"class_room"`
	PKType     string `json:"pk_type"` // lesson kind (lecture, lab, ...)
}

// Score is one graded course in a semester.
type Score struct {
	Semester     Semester `json:"semester"`
	CourseName   string   `json:"course_name"`
	CourseNature string   `json:"course_nature"` // e.g. 必修 / 选修
	Credit       float64  `json:"credit"`
	// Grade is kept as a string: the portal renders both numeric grades and
	// pass/fail tokens such as 合格.
	Grade string `json:"grade"`
}

// GPA is the student's grade point summary.
type GPA struct {
	StudentName string `json:"student_name"`
	// GPA is a string because the portal occasionally renders it
	// non-numerically.
	GPA    string `json:"gpa"`
	Status string `json:"status"` // class/status label, e.g. "23级软件1班"
}

// ElectiveCourse is one enrolled elective in a semester.
type ElectiveCourse struct {
	Semester     Semester `json:"semester"`
	ClassName    string   `json:"class_name"`
	ClassType    string   `json:"class_type"`
	Assessment   string   `json:"assessment"` // assessment method
	ScheduleInfo string   `json:"schedule_info"`
	ClassNumber  string   `json:"class_number"`
	Credit       float64  `json:"credit"`
	Teacher      string   `json:"teacher"`
}
