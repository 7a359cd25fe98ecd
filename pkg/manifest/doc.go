// Package manifest builds and publishes environment manifests.
//
// A [Manifest] is the list of top-level packages an execution host must
// install before running a notebook's code. It is recomputed in full on every
// pipeline run and always replaces the previous one: publishing is never
// additive.
//
// # Formats
//
// [Encode] writes a manifest in one of four formats:
//
//   - pyenv: one "- name" line per package, the body of a PyScript py-env
//     element (the canonical form)
//   - requirements: one name per line, as in requirements.txt
//   - pyscript: a TOML document with a packages array
//   - json: {"packages": [...]}
//
// # Publishers
//
// A [Publisher] receives each new manifest. [Slot] keeps the live manifest
// in memory; [FileSink], [RedisSink] and [MongoSink] persist it for hosts
// running elsewhere. [Multi] fans out to several publishers in order.
package manifest
