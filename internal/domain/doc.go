// Package domain defines the core business entities of the content-generation
// stage: presentations, slides and their classification taxonomy, per-slide
// generation outcomes, and the aggregated stage result.
//
// Entities validate themselves at construction where the data must be coherent
// to exist at all (presentations). Slide descriptors are deliberately
// constructible in incomplete form: descriptor completeness is checked per
// slide during a stage run so that one bad slide never blocks the rest.
package domain
