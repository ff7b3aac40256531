// Package navigation turns a step's NavigationRule into a Decision table and
// evaluates it two ways: natively against live answers (Next) and as a
// portable expression string (BuildExpression) that external interpreters can
// run. Both renderings come from the same Decision so they always agree.
//
// Expression syntax is the common subset of CEL and expr-lang:
//
//	answers['color'] == 'Red' ? 'Page 2' : (answers['color'] == 'Blue' ? 'Page 3' : 'continue')
//	'b' in answers['tags'] ? 'X' : 'continue'
//
// A missing rule, a rule whose driver field is not in the step, or a rule
// without conditions renders as the continuation marker 'continue'.
package navigation
