package semantic

// Operator name tables for the query provider and the surrounding framework.
// Rules classify chain operators through these sets rather than matching
// strings inline.

// FilterOps narrow a sequence.
var FilterOps = set("Where", "OfType", "Distinct", "DistinctBy")

// ProjectOps reshape a sequence.
var ProjectOps = set("Select", "SelectMany", "GroupBy", "Join", "GroupJoin", "Zip")

// PrimaryOrderOps establish a fresh ordering, discarding any prior one.
var PrimaryOrderOps = set("OrderBy", "OrderByDescending", "Order", "OrderDescending")

// SecondaryOrderOps refine an existing ordering.
var SecondaryOrderOps = set("ThenBy", "ThenByDescending")

// MaterializingOps force evaluation synchronously.
var MaterializingOps = set(
	"ToList", "ToArray", "ToDictionary", "ToHashSet", "ToLookup",
	"First", "FirstOrDefault", "Single", "SingleOrDefault",
	"Last", "LastOrDefault", "ElementAt", "ElementAtOrDefault",
	"Count", "LongCount", "Sum", "Min", "Max", "Average",
	"Any", "All", "Contains",
)

// AsyncMaterializingOps are the awaitable counterparts.
var AsyncMaterializingOps = set(
	"ToListAsync", "ToArrayAsync", "ToDictionaryAsync", "ToHashSetAsync",
	"FirstAsync", "FirstOrDefaultAsync", "SingleAsync", "SingleOrDefaultAsync",
	"LastAsync", "LastOrDefaultAsync", "CountAsync", "LongCountAsync",
	"SumAsync", "MinAsync", "MaxAsync", "AverageAsync", "AnyAsync", "AllAsync",
	"ContainsAsync",
)

// InMemorySwitchOps move evaluation to the client; everything after them in a
// chain runs in memory, not at the store.
var InMemorySwitchOps = set(
	"AsEnumerable", "ToList", "ToArray", "ToDictionary", "ToHashSet",
	"ToLookup", "AsAsyncEnumerable",
)

// SequenceConversionOps are the materializing conversions LC002 looks for
// ahead of a narrowing operator.
var SequenceConversionOps = set(
	"ToList", "ToArray", "ToDictionary", "ToHashSet", "AsEnumerable",
)

// PositionalOps select by position and therefore need a defined order.
var PositionalOps = set(
	"Skip", "Take", "SkipLast", "TakeLast",
	"ElementAt", "ElementAtOrDefault",
	"First", "FirstOrDefault", "Last", "LastOrDefault",
)

// CountOps answer cardinality questions.
var CountOps = set("Count", "LongCount")

// EagerLoadOps pull related rows into the same query.
var EagerLoadOps = set("Include")

// SplitQueryOps split eager loads into separate round trips.
var SplitQueryOps = set("AsSplitQuery")

// NoTrackingOps disable change tracking for a query.
var NoTrackingOps = set("AsNoTracking", "AsNoTrackingWithIdentityResolution")

// CaseFoldOps transform character casing and defeat index usage when applied
// to a stored value inside a predicate.
var CaseFoldOps = set("ToLower", "ToUpper", "ToLowerInvariant", "ToUpperInvariant")

// CommitOps flush the session's pending writes.
var CommitOps = set("SaveChanges", "SaveChangesAsync")

// RangeRemovalOps mark a batch of entities for deletion.
var RangeRemovalOps = set("RemoveRange")

// OrderingLikeOps is the union consulted when deciding whether a chain has
// any explicit ordering.
func OrderingLikeOps(name string) bool {
	return PrimaryOrderOps[name] || SecondaryOrderOps[name]
}

// queryOps is every operator name above, used for origin classification.
var queryOps = union(
	FilterOps, ProjectOps, PrimaryOrderOps, SecondaryOrderOps,
	MaterializingOps, AsyncMaterializingOps, InMemorySwitchOps,
	PositionalOps, EagerLoadOps, SplitQueryOps, NoTrackingOps,
	set("ThenInclude", "AsQueryable", "AsTracking", "Skip", "Take", "Concat",
		"Union", "Intersect", "Except", "Append", "Prepend", "Reverse",
		"DefaultIfEmpty", "Cast"),
)

// bclMethods are common base-library instance/static methods a predicate may
// legitimately call; the provider translates them.
var bclMethods = set(
	"Contains", "StartsWith", "EndsWith", "IndexOf", "Trim", "TrimStart",
	"TrimEnd", "Substring", "Replace", "Equals", "CompareTo", "ToString",
	"Parse", "TryParse", "IsNullOrEmpty", "IsNullOrWhiteSpace", "Concat",
	"Abs", "Ceiling", "Floor", "Round", "AddDays", "AddHours", "AddMinutes",
	"HasValue", "GetValueOrDefault",
)

// caseFoldAware: case folds are BCL methods too, but LC014 handles them.
func init() {
	for op := range CaseFoldOps {
		bclMethods[op] = true
	}
}

// IsFrameworkMethod reports whether name belongs to the query provider or the
// base library, as opposed to program-declared code.
func IsFrameworkMethod(name string) bool {
	return queryOps[name] || bclMethods[name] || CommitOps[name] || RangeRemovalOps[name]
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func union(sets ...map[string]bool) map[string]bool {
	m := make(map[string]bool)
	for _, s := range sets {
		for k := range s {
			m[k] = true
		}
	}
	return m
}
