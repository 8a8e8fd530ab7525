// Package recommend maps antipattern types to actionable fix instructions.
// The instructions are written to be consumed verbatim by a human or an LLM
// performing the fix.
package recommend

// Static is a recommender returning a fixed, type-level instruction.
type Static struct {
	instruction string
}

// NewStatic creates a recommender with the given instruction text.
func NewStatic(instruction string) Static {
	return Static{instruction: instruction}
}

// FixInstruction returns the fix instruction for the antipattern type.
func (r Static) FixInstruction() string {
	return r.instruction
}

// ForGlobalDescribe recommends replacing global describe lookups with
// targeted describes.
func ForGlobalDescribe() Static {
	return NewStatic("Avoid Schema.getGlobalDescribe(): it materializes describe metadata " +
		"for every type in the org. Use a targeted describe such as " +
		"SObjectType.<Type>.getDescribe() or Schema.describeSObjects() for the specific " +
		"types you need, and hoist the lookup out of any loop into a cached variable.")
}

// ForUnboundedQuery recommends bounding the outer query clause.
func ForUnboundedQuery() Static {
	return NewStatic("Add a WHERE clause that restricts the rows to the ones the logic " +
		"actually needs, or a LIMIT clause when only a bounded number of rows is " +
		"required. The restriction must appear in the outer query: a bounded subquery " +
		"does not bound the outer result set.")
}

// ForUnusedFields recommends trimming the selected field list.
func ForUnusedFields() Static {
	return NewStatic("Remove the fields listed as unused from the SELECT clause so the " +
		"query transfers only the data the method reads. Re-check callers before " +
		"removing a field that is passed on indirectly.")
}
