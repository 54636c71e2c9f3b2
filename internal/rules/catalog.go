package rules

import "sort"

// RuleInfo describes one catalogue entry. Templates take positional string
// arguments in MessageArgs order.
type RuleInfo struct {
	ID       string
	Severity Severity
	Summary  string
	Template string
}

// Catalog is the stable rule catalogue. LC016 is reserved with no assigned
// semantics and is deliberately absent.
var Catalog = map[string]RuleInfo{
	"LC001": {
		ID: "LC001", Severity: SeverityWarning,
		Summary:  "program-defined call inside a translated predicate",
		Template: "call to program-defined method '%s' inside the '%s' expression cannot be translated by the store and forces client evaluation",
	},
	"LC002": {
		ID: "LC002", Severity: SeverityWarning,
		Summary:  "materialization before filtering",
		Template: "'%s' materializes the full result set before '%s' narrows it; compose the query before converting",
	},
	"LC003": {
		ID: "LC003", Severity: SeverityInfo,
		Summary:  "count compared to zero",
		Template: "'%s' compared to zero forces a full scan; use 'Any' to answer an existence question",
	},
	"LC004": {
		ID: "LC004", Severity: SeverityWarning,
		Summary:  "non-deterministic value built inside a query expression",
		Template: "'%s' is evaluated per translation inside the '%s' expression; hoist it into a local before the query",
	},
	"LC005": {
		ID: "LC005", Severity: SeverityWarning,
		Summary:  "repeated primary ordering",
		Template: "'%s' discards the ordering established by '%s'; use a secondary ordering operator to refine instead",
	},
	"LC006": {
		ID: "LC006", Severity: SeverityWarning,
		Summary:  "multiple collection eager-loads without a split query",
		Template: "eager-loading %s independent collections in one query multiplies transferred rows; add 'AsSplitQuery'",
	},
	"LC007": {
		ID: "LC007", Severity: SeverityWarning,
		Summary:  "per-iteration query in a loop",
		Template: "'%s' runs one store query per loop iteration over '%s'; batch with a membership predicate instead",
	},
	"LC008": {
		ID: "LC008", Severity: SeverityWarning,
		Summary:  "synchronous materialization in asynchronous code",
		Template: "synchronous '%s' blocks inside asynchronous method '%s'; use the awaitable counterpart",
	},
	"LC009": {
		ID: "LC009", Severity: SeverityInfo,
		Summary:  "tracked entities returned without write-back",
		Template: "entities from '%s' are returned without 'AsNoTracking' and never written back; tracking overhead is wasted",
	},
	"LC010": {
		ID: "LC010", Severity: SeverityWarning,
		Summary:  "commit inside a loop",
		Template: "'%s' inside a loop commits once per iteration; move the commit after the loop",
	},
	"LC011": {
		ID: "LC011", Severity: SeverityWarning,
		Summary:  "mapped entity without an identity key",
		Template: "entity '%s' mapped by '%s' resolves no identity key by convention, annotation, or configuration",
	},
	"LC012": {
		ID: "LC012", Severity: SeverityWarning,
		Summary:  "range removal of a deferred query",
		Template: "'%s' is given a still-deferred query; the store fetches and tracks every row before deleting",
	},
	"LC013": {
		ID: "LC013", Severity: SeverityWarning,
		Summary:  "deferred query escapes its session's scope",
		Template: "deferred query sourced from '%s' escapes the scope that releases the session; enumeration after return will fail",
	},
	"LC014": {
		ID: "LC014", Severity: SeverityWarning,
		Summary:  "case folding defeats index usage",
		Template: "'%s' on mapped member '%s' is not sargable; the store cannot use an index over the transformed value",
	},
	"LC015": {
		ID: "LC015", Severity: SeverityInfo,
		Summary:  "positional operator without ordering",
		Template: "'%s' without a preceding ordering operator yields store-defined, unstable results",
	},
	"LC017": {
		ID: "LC017", Severity: SeverityInfo,
		Summary:  "over-fetch of a large entity",
		Template: "'%s' materializes full '%s' entities (%s members) but only %s are used; project the needed members first",
	},
}

// CatalogIDs returns the catalogue's rule identifiers in lexical order.
func CatalogIDs() []string {
	ids := make([]string, 0, len(Catalog))
	for id := range Catalog {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
