// Package worldconfig owns the Config singleton (§6: "Singleton Config
// row (env, agents_enabled) governs whether agents perform work") and a
// typed accessor over the static parameter tables spec.md treats as an
// external collaborator ("static-data CSV ingestion and validation" is
// explicitly out of scope, §1). The core still needs somewhere to read
// already-loaded parameter values from by name, so this package exposes
// that read surface without owning the CSV ingestion pipeline itself —
// ParametersDescV2 is populated by a loader outside this package (the
// CSV ingestion collaborator) and consumed here via LoadParameters.
package worldconfig
