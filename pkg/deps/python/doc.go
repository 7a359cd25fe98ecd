// Package python discovers the modules imported by Python source text.
//
// # Import Scanning
//
// [Extract] is a line-oriented scanner, not a parser. A line contributes a
// dependency when, ignoring leading whitespace, it starts with
//
//	import <module>
//	from <module> import ...
//
// Only the first whitespace-delimited token after the keyword is used and
// it is cut at the first ".", "," or ";", so
//
//	import numpy as np        -> numpy
//	import matplotlib.pyplot  -> matplotlib
//	from sklearn.svm import X -> sklearn
//	import os, sys            -> os
//
// # Known Limitations
//
// The scanner has no lexical context. These cases are accepted, not bugs:
//   - imports inside string literals or docstrings are reported
//   - conditional imports (inside if/try blocks) are reported unconditionally
//   - dynamic imports (__import__, importlib.import_module) are missed
//   - only the first module of "import a, b" is reported
//   - relative imports ("from . import x") yield nothing
//   - standard-library modules (os, sys, json) are reported like any other
//
// # Requirements Files
//
// [ParseRequirements] reads the one-name-per-line form that nbenv writes for
// the "requirements" manifest format, so a published manifest can be read
// back and compared.
package python
