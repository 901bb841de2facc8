package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/chulbong-kr/wordscan/pkg/enum"
	"github.com/spf13/cobra"
)

var (
	githubToken         string
	githubBaseURL       string
	githubOrg           string
	githubUser          string
	githubWordlist      string
	githubOutputPath    string
	githubOutputFormat  string
	githubColor         string
	githubIncremental   bool
	githubIncludeHidden bool
)

var githubCmd = &cobra.Command{
	Use:   "github [owner/repo]",
	Short: "Scan GitHub repositories",
	Long: `Scan the default branch of GitHub repositories through the API.
Scan a single repo (owner/repo), all repos in an org (--org), or all repos for a user (--user).
No API token needed for public repositories.
Use --token or GITHUB_TOKEN for private repos and higher rate limits.
For full history, clone the repository and run 'wordscan scan --git --history'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGitHubScan,
}

var githubListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the GitHub repositories a scan would cover",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGitHubList,
}

func init() {
	githubCmd.PersistentFlags().StringVar(&githubToken, "token", "", "GitHub API token (or GITHUB_TOKEN env; optional for public repos)")
	githubCmd.PersistentFlags().StringVar(&githubBaseURL, "base-url", "", "GitHub Enterprise API URL")
	githubCmd.PersistentFlags().StringVar(&githubOrg, "org", "", "Scan all repositories in organization")
	githubCmd.PersistentFlags().StringVar(&githubUser, "user", "", "Scan all repositories for user")

	githubCmd.Flags().StringVar(&githubWordlist, "wordlist", "", "Word list: file, s3://bucket/key or azblob://container/blob (default: builtin)")
	githubCmd.Flags().StringVar(&githubOutputPath, "datastore", defaultDatastore, "Datastore directory (\":memory:\" to keep nothing)")
	githubCmd.Flags().StringVar(&githubOutputFormat, "format", "human", "Output format: json, sarif, human")
	githubCmd.Flags().StringVar(&githubColor, "color", "auto", "Color output: auto, always, never")
	githubCmd.Flags().BoolVar(&githubIncremental, "incremental", false, "Skip already-scanned blobs")
	githubCmd.Flags().BoolVar(&githubIncludeHidden, "include-hidden", false, "Include hidden files and directories")

	githubCmd.AddCommand(githubListCmd)
}

func newGitHubEnumerator(cmd *cobra.Command, args []string) (*enum.GitHubEnumerator, error) {
	token := githubToken
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		progress(cmd, "Note: No GitHub token provided. Using unauthenticated access (60 requests/hour, public repos only).\n")
		progress(cmd, "Set GITHUB_TOKEN or use --token for higher rate limits and private repo access.\n\n")
	}

	var owner, repo string
	if len(args) > 0 {
		parts := splitOwnerRepo(args[0])
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid repository format, expected owner/repo (e.g., chulbong-kr/wordscan)")
		}
		owner, repo = parts[0], parts[1]
	}

	if repo == "" && githubOrg == "" && githubUser == "" {
		return nil, fmt.Errorf("must specify owner/repo, --org, or --user")
	}

	ghEnum, err := enum.NewGitHubEnumerator(enum.GitHubConfig{
		Token:   token,
		BaseURL: githubBaseURL,
		Owner:   owner,
		Repo:    repo,
		Org:     githubOrg,
		User:    githubUser,
		Config: enum.Config{
			IncludeHidden: githubIncludeHidden,
			MaxFileSize:   10 * 1024 * 1024,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating GitHub client: %w", err)
	}
	return ghEnum, nil
}

func runGitHubScan(cmd *cobra.Command, args []string) error {
	ghEnum, err := newGitHubEnumerator(cmd, args)
	if err != nil {
		return err
	}
	return runRemoteScan(cmd, "GitHub scan", ghEnum, remoteScanOptions{
		wordlist:    githubWordlist,
		datastore:   githubOutputPath,
		format:      githubOutputFormat,
		color:       githubColor,
		incremental: githubIncremental,
	})
}

func runGitHubList(cmd *cobra.Command, args []string) error {
	ghEnum, err := newGitHubEnumerator(cmd, args)
	if err != nil {
		return err
	}
	repos, err := ghEnum.ListRepos(commandContext(cmd))
	if err != nil {
		return err
	}
	return outputRepos(cmd, repos)
}

// remoteScanOptions carries the flags shared by the API-backed scans.
type remoteScanOptions struct {
	wordlist    string
	datastore   string
	format      string
	color       string
	incremental bool
}

// runRemoteScan scans everything e yields into the configured datastore and
// prints the results.
func runRemoteScan(cmd *cobra.Command, what string, e enum.Enumerator, opts remoteScanOptions) error {
	ctx := commandContext(cmd)
	words, err := loadWords(ctx, opts.wordlist, "", "")
	if err != nil {
		return fmt.Errorf("loading words: %w", err)
	}

	out, err := openOutput(opts.datastore, false)
	if err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer out.Close()

	m, err := newMatcher(out, words, "", 3)
	if err != nil {
		return fmt.Errorf("creating matcher: %w", err)
	}
	defer m.Close()

	p, err := newPipeline(out, m, words, opts.incremental)
	if err != nil {
		return err
	}
	if err := p.run(ctx, e); err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	printSummary(cmd, what, p.stats, opts.datastore, opts.incremental)
	return outputResults(cmd, out.store, opts.format, opts.color)
}

func outputRepos(cmd *cobra.Command, repos []enum.RepoInfo) error {
	for _, r := range repos {
		branch := r.DefaultBranch
		if branch == "" {
			branch = "-"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", r.Name, branch, r.CloneURL)
	}
	progress(cmd, "%d repositories\n", len(repos))
	return nil
}

// splitOwnerRepo splits "owner/repo" on '/'.
func splitOwnerRepo(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "/")
}
