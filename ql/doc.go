// Package ql compiles JSON queries into document predicates.
//
// A query is a JSON value describing a filter:
//
//	{"status.lang": "jp", "age": {"$gt": 12}}
//
// Compile validates the query against the published grammar, parses it
// and returns a Predicate that can be evaluated against any number of
// documents, concurrently if needed:
//
//	match, err := ql.CompileJSON([]byte(`{"age": {"$gt": 12}}`))
//	if err != nil {
//	    return err // *ql.QuerySyntaxError for malformed queries
//	}
//	for _, doc := range docs {
//	    if match(doc) {
//	        ...
//	    }
//	}
//
// Schema returns the grammar as a draft 2020-12 JSON Schema, the same
// document Compile validates against.
//
// OPERATORS:
//
//	{"f": 12}                       equality with a string, number or boolean
//	{"f": {"$re": "x"}}              some substring matches the regex
//	{"f": {"$exists": true}}         field is present
//	{"f": {"$matches": "b.b"}}       whole string matches the regex
//	{"f": {"$search": "b"}}          some substring matches the regex
//	{"f": {"$fragment": {...}}}      mapping contains the given pairs
//	{"f": {"$types": ["string"]}}    datatype is one of the names
//	{"f": {"$enum": [1, 2]}}         value is one of the list
//	{"f": {"$eq": v}} ... {"$ge": v} comparison
//	{"f": {"$length": 2}}            length of string, list or mapping
//	{"f": {"$all": [...]}}           list contains every given value
//	{"f": {"$any": [...]}}           list contains some given value
//	{"f": {"$all": verb}}            every element satisfies verb
//	{"f": {"$any": verb}}            some element satisfies verb
//	{"f": {"$keys": verb}}           verb holds for the list of all keys
//	{"f": {"$values": verb}}         verb holds for the list of all leaf values
//	{"$and": [...]} {"$or": [...]} {"$not": q}
//
// Field keys may be dotted paths ("status.lang"). Bare operators are not
// allowed at the root of a query: {"$gt": 12} is a syntax error.
package ql
