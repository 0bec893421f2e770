package cli

func regCommands() {
	//Voting
	voteCmd.AddCommand(vote_sendCmd)
	voteCmd.AddCommand(vote_estimateCmd)

	//Queue
	queueCmd.AddCommand(queue_listCmd)
	queueCmd.AddCommand(queue_sweepCmd)

	//Root
	rootCmd.AddCommand(voteCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(terminateCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(readCmd)
}
