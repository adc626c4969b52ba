package config

// DefaultConfigYAML is written by `pipebuilder init`.
const DefaultConfigYAML = `# Pipebuilder Configuration File
#
# Values here override built-in defaults. Every key can also be set through
# an environment variable, e.g. PIPEBUILDER_GENERATOR_MODE=remote.

catalog:
  # search: .pipebuilder/catalog.yaml, ~/.config/pipebuilder/catalog.yaml,
  # /usr/share/pipebuilder/catalog.yaml, then the builtin catalog.
  # Other values: builtin, file (requires path), remote (uses generator.address).
  source: search
  # path: ./catalog.yaml

generator:
  # local generates in-process; remote calls a running "pipebuilder serve".
  mode: local
  address: 127.0.0.1:50161
  timeout: 30s
  default_output: jobs/run.py
  emit_local_files: false

daemon:
  hostname: 127.0.0.1
  port: 50161
  rate_limit_enabled: true
  requests_per_second: 5
  burst: 10

database:
  path: ~/.local/share/pipebuilder/pipebuilder.db

logging:
  level: info
  format: console
  file: ~/.local/share/pipebuilder/pipebuilder.log

tui:
  # default or high-contrast
  theme: default
`
