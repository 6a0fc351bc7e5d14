// Package anchorscore rates anchor text quality without any language
// tooling. It produces sub-scores for length, keyword density and
// specificity plus a weighted overall score, all on a 0-100 scale.
package anchorscore
