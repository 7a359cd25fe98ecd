// Package notebook decodes and validates notebook documents.
//
// A notebook is a JSON object whose "cells" member is an ordered list of
// markdown, code or other cells. This package understands the subset of the
// public notebook interchange format that nbenv needs:
//
//	{
//	  "cells": [
//	    {"cell_type": "markdown", "source": ["# Title"]},
//	    {"cell_type": "code", "source": ["import numpy as np\n", "x = 1"],
//	     "outputs": [{"output_type": "stream", "text": ["1\n"]}]}
//	  ],
//	  "metadata": {"kernelspec": {"language": "python"}}
//	}
//
// # Two-Tier Validation
//
// [Validate] is the only document-level gate. It rejects a document whose
// "cells" member is missing or is not a list, and nothing else. Cells are
// kept as raw JSON and decoded one at a time by [DecodeCell], so a single
// malformed cell produces an INVALID_CELL error for that cell only.
//
// No nbformat version checks are performed.
package notebook
