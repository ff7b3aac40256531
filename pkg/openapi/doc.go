// Package openapi bridges compiled steps to kin-openapi. It converts a step's
// data schema into an openapi3.Schema, checks answer records against it, and
// describes a whole flow as an OpenAPI document with one operation per step.
package openapi
