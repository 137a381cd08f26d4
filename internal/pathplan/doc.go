// Package pathplan derives every file and directory path a job touches.
//
// All functions are pure: they never stat, create, or remove anything, and the
// same inputs always produce the same paths. The pipeline asks the planner for
// each stage's input and output before invoking a backend, so naming rules live
// in one place.
package pathplan
