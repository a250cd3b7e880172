/*
Package symbaker decides a deterministic export prefix for every compiled package of a
plugin workspace, so that plugins loaded into one address space never export the same
symbol twice.

# Resolution

A prefix is resolved from independent [Sources], in this order:

 1. an [overrides] entry of the config file for the package;
 2. the package's own prefix when its manifest sets prefer_package_prefix;
 3. the priority list, by default attr, env_prefix, config, top_package, workspace,
    package, crate;
 4. the sanitized package name.

The result is a [ResolvedPrefix]; exported functions are renamed to prefix + sep + name
by a [Renamer], optionally filtered and templated through [ModuleRules].

# Enforcement

With SYMBAKER_ENFORCE_INHERIT set, a dependency which could only name itself fails with a
[ViolationError]: it must inherit the prefix of the top level package, through
SYMBAKER_TOP_PACKAGE, SYMBAKER_PREFIX or a config file. Without it a warning is logged
once.

# Trace

When SYMBAKER_TRACE is set, every decision is appended to SYMBAKER_TRACE_FILE, one line
per event, tagged with the package name:

	[symbaker pkg=app] selected source=top_package raw="app" sanitized="app" sep="__"

Several build processes share the file. The report package parses it back.

# Tooling

The symdump command wires everything together:

	symdump init --prefix app      write symbaker.toml and .cargo/config.toml [env]
	symdump check                  verify the workspace was initialized
	symdump resolve -k dep         print the resolved prefix of a package
	symdump dump target/           dump exported symbols and report duplicates
	symdump report                 write .symbaker/resolution.yaml from the trace

See symdump -h for details.
*/
package symbaker
