// Package triage holds the domain types shared by the issue triage
// pipeline: references to tracker issues, the issues themselves, label
// catalog entries and the label assignments produced by classification.
//
// The pipeline itself lives in package pipeline; the step engine it runs on
// lives in package workflow.
package triage
