package main

import (
	"fmt"
	"os"

	"github.com/chulbong-kr/wordscan/pkg/enum"
	"github.com/spf13/cobra"
)

var (
	gitlabToken         string
	gitlabGroup         string
	gitlabUser          string
	gitlabBaseURL       string
	gitlabWordlist      string
	gitlabOutputPath    string
	gitlabOutputFormat  string
	gitlabColor         string
	gitlabIncremental   bool
	gitlabIncludeHidden bool
)

var gitlabCmd = &cobra.Command{
	Use:   "gitlab [namespace/project]",
	Short: "Scan GitLab projects",
	Long: `Scan the default branch of GitLab projects through the API.
Scan a single project, all projects in a group (--group), or all projects for a user (--user).
A token is required: use --token or GITLAB_TOKEN.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGitLabScan,
}

var gitlabListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the GitLab projects a scan would cover",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGitLabList,
}

func init() {
	gitlabCmd.PersistentFlags().StringVar(&gitlabToken, "token", "", "GitLab token (or GITLAB_TOKEN env)")
	gitlabCmd.PersistentFlags().StringVar(&gitlabGroup, "group", "", "Scan all projects in group")
	gitlabCmd.PersistentFlags().StringVar(&gitlabUser, "user", "", "Scan all projects for user")
	gitlabCmd.PersistentFlags().StringVar(&gitlabBaseURL, "url", "", "GitLab base URL (default: gitlab.com)")

	gitlabCmd.Flags().StringVar(&gitlabWordlist, "wordlist", "", "Word list: file, s3://bucket/key or azblob://container/blob (default: builtin)")
	gitlabCmd.Flags().StringVar(&gitlabOutputPath, "datastore", defaultDatastore, "Datastore directory (\":memory:\" to keep nothing)")
	gitlabCmd.Flags().StringVar(&gitlabOutputFormat, "format", "human", "Output format: json, sarif, human")
	gitlabCmd.Flags().StringVar(&gitlabColor, "color", "auto", "Color output: auto, always, never")
	gitlabCmd.Flags().BoolVar(&gitlabIncremental, "incremental", false, "Skip already-scanned blobs")
	gitlabCmd.Flags().BoolVar(&gitlabIncludeHidden, "include-hidden", false, "Include hidden files and directories")

	gitlabCmd.AddCommand(gitlabListCmd)
}

func newGitLabEnumerator(args []string) (*enum.GitLabEnumerator, error) {
	token := gitlabToken
	if token == "" {
		token = os.Getenv("GITLAB_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("GitLab token required: use --token or GITLAB_TOKEN")
	}

	var project string
	if len(args) > 0 {
		project = args[0]
	}
	if project == "" && gitlabGroup == "" && gitlabUser == "" {
		return nil, fmt.Errorf("must specify namespace/project, --group, or --user")
	}

	glEnum, err := enum.NewGitLabEnumerator(enum.GitLabConfig{
		Token:   token,
		BaseURL: gitlabBaseURL,
		Project: project,
		Group:   gitlabGroup,
		User:    gitlabUser,
		Config: enum.Config{
			IncludeHidden: gitlabIncludeHidden,
			MaxFileSize:   10 * 1024 * 1024,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating GitLab client: %w", err)
	}
	return glEnum, nil
}

func runGitLabScan(cmd *cobra.Command, args []string) error {
	glEnum, err := newGitLabEnumerator(args)
	if err != nil {
		return err
	}
	return runRemoteScan(cmd, "GitLab scan", glEnum, remoteScanOptions{
		wordlist:    gitlabWordlist,
		datastore:   gitlabOutputPath,
		format:      gitlabOutputFormat,
		color:       gitlabColor,
		incremental: gitlabIncremental,
	})
}

func runGitLabList(cmd *cobra.Command, args []string) error {
	glEnum, err := newGitLabEnumerator(args)
	if err != nil {
		return err
	}
	projects, err := glEnum.ListProjects(commandContext(cmd))
	if err != nil {
		return err
	}
	return outputRepos(cmd, projects)
}
