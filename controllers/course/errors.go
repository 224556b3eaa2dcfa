package controllers

import "errors"

// Sentinel errors for the enrollment, progress and certificate flows. The
// fiber handlers map these onto HTTP statuses; tests assert on them directly.
var (
	ErrStudentNotFound     = errors.New("student not found")
	ErrInvalidRole         = errors.New("only students can enroll")
	ErrCourseNotFound      = errors.New("course not found")
	ErrAlreadyEnrolled     = errors.New("already enrolled in this course")
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrNotEnrolled         = errors.New("not enrolled in this course")
	ErrLessonNotFound      = errors.New("lesson not found")
	ErrCourseNotCompleted  = errors.New("course not completed")
	ErrCertificateExists   = errors.New("certificate already issued")
	ErrCertificateNotFound = errors.New("certificate not found")
)
