package bootstrap

// DefaultToolchain is installed into the environment by init. Lower bounds
// keep installs current without pinning users to exact releases.
var DefaultToolchain = []string{
	"ruff>=0.6",
	"pytest>=8",
	"pytest-cov>=5",
	"mypy>=1.10",
	"pyright>=1.1.380",
	"pre-commit>=3.7",
	"pip-audit>=2.7",
	"bandit>=1.7",
	"black>=24.8",
}

// precommitConfig is written as .pre-commit-config.yaml when the project has
// none. It wires the staged-files check as a local hook.
const precommitConfig = `repos:
  - repo: local
    hooks:
      - id: pyflight-check
        name: pyflight check (staged)
        entry: pyflight check --staged --changed
        language: system
        pass_filenames: false
`
