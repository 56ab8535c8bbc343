package cmd

import (
	"fmt"
	"net/http"
	"os"

	"strainchain/breeding"
	"strainchain/config"
	"strainchain/events"
	"strainchain/exception"
	"strainchain/genotype"
	"strainchain/ledger"
	"strainchain/logx"
	"strainchain/mining"
	"strainchain/monitoring"
	"strainchain/store"
)

var (
	chainConfigPath  string
	miningConfigPath string
	metricsAddr      string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&chainConfigPath, "config", "config/genesis.yml", "Path to chain configuration file")
	rootCmd.PersistentFlags().StringVar(&miningConfigPath, "mining-config", "config/mining.ini", "Path to mining configuration file")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Address to serve prometheus metrics on (empty disables)")
}

// environment is everything a subcommand needs to act on the chain.
type environment struct {
	cfg   *config.ChainConfig
	chain *ledger.Ledger
	orch  *breeding.Orchestrator
	store *store.LedgerStore
}

func (e *environment) Close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			logx.Error("CMD", "failed to close ledger store:", err)
		}
	}
}

// openEnvironment loads configuration, opens the store, reloads and
// revalidates the persisted chain, seeds genesis strains on first run,
// and replays breeding events so every genotype is breedable again.
func openEnvironment() (*environment, error) {
	monitoring.InitMetrics()
	if metricsAddr != "" {
		mux := http.NewServeMux()
		monitoring.RegisterMetrics(mux)
		exception.SafeGo("metrics-server", func() {
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logx.Error("CMD", "metrics server stopped:", err)
			}
		})
	}

	cfg, err := config.LoadChainConfig(chainConfigPath)
	if err != nil {
		return nil, err
	}
	miningCfg := config.DefaultMiningConfig()
	if _, statErr := os.Stat(miningConfigPath); statErr == nil {
		miningCfg, err = config.LoadMiningConfig(miningConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load mining config: %w", err)
		}
	}

	ledgerStore, err := store.CreateStore(&cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger store: %w", err)
	}

	bus := events.NewEventBus()
	chain, err := ledger.LoadLedger(miningCfg.Difficulty, ledgerStore, bus)
	if err != nil {
		ledgerStore.Close()
		return nil, err
	}

	miner := mining.NewMiner(miningCfg.ToMinerConfig())
	orch := breeding.NewOrchestrator(chain, miner, mixEngine{}, bus)

	if chain.Length() == 0 {
		for _, strain := range cfg.GenesisStrains {
			if _, err := orch.RegisterGenesisStrain(strain.Name, strain.Traits, cfg.Breeder); err != nil {
				ledgerStore.Close()
				return nil, fmt.Errorf("failed to seed genesis strain %q: %w", strain.Name, err)
			}
		}
	} else if err := replayGenomes(cfg, chain, orch); err != nil {
		ledgerStore.Close()
		return nil, err
	}

	return &environment{cfg: cfg, chain: chain, orch: orch, store: ledgerStore}, nil
}

// replayGenomes reconstructs every genotype from the chain: genesis
// strains come from config, bred strains from re-running the
// deterministic trait engine with each record's stored mutation seed.
// Any digest mismatch means the config or chain drifted.
func replayGenomes(cfg *config.ChainConfig, chain *ledger.Ledger, orch *breeding.Orchestrator) error {
	engine := mixEngine{}
	for _, strain := range cfg.GenesisStrains {
		orch.RegisterGenotype(genotype.New(strain.Name, strain.Traits))
	}
	for _, rec := range chain.Records() {
		if rec.IsGenesis() {
			if _, ok := orch.Genotype(rec.OffspringDigest); !ok {
				return fmt.Errorf("genesis strain %q is on the chain but missing from config", rec.StrainName)
			}
			continue
		}
		parent1, ok1 := orch.Genotype(rec.ParentDigest1)
		parent2, ok2 := orch.Genotype(rec.ParentDigest2)
		if !ok1 || !ok2 {
			return fmt.Errorf("cannot replay %q: parent genotype unavailable", rec.StrainName)
		}
		offspring, err := engine.Breed(parent1, parent2, rec.MutationSeed)
		if err != nil {
			return fmt.Errorf("cannot replay %q: %w", rec.StrainName, err)
		}
		if digest := orch.RegisterGenotype(offspring); digest != rec.OffspringDigest {
			return fmt.Errorf("replayed genotype for %q does not match its recorded digest", rec.StrainName)
		}
	}
	return nil
}

// resolveStrain accepts a strain name or any digest form and returns
// the genome digest of the newest matching record.
func resolveStrain(chain *ledger.Ledger, ref string) (string, error) {
	if rec, err := chain.Lookup(ref); err == nil {
		return rec.OffspringDigest, nil
	}
	records := chain.Records()
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].StrainName == ref {
			return records[i].OffspringDigest, nil
		}
	}
	return "", fmt.Errorf("no strain matches %q", ref)
}
