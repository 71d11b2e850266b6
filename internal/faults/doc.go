// Package faults defines the error taxonomy shared by the jellyclean
// components.
//
// Errors are tagged with one of the exported sentinel markers so callers can
// classify a failure with errors.Is regardless of how deeply it was wrapped.
// The typed errors carry the paths involved so log lines and run summaries can
// say exactly which rename or removal failed.
package faults
