package queue

// priorityOrder lists every queueable command from lowest priority to
// highest. A command's priority is its index, so release-critical work
// strictly outruns housekeeping. Append-only: inserting in the middle
// renumbers everything below the insertion point.
var priorityOrder = []string{
	"purge_torrents",
	"search_prefetch",
	"optimize_original_img",
	"log_downloads",
	"delete_img",
	"delete_book",
	"reverse_set_book_completed",
	"reverse_fileshare_book",
	"notify_p2p_networks",
	"create_all_torrent",
	"create_creator_torrent",
	"optimize_web_img",
	"update_creator_indicia",
	"optimize_img",
	"optimize_cbz_img",
	"fileshare_book",
	"set_book_completed",
	"post_book_completed",
	"create_book_torrent",
	"create_cbz",
	"update_creator_indicia_for_release",
	"optimize_img_for_release",
	"optimize_cbz_img_for_release",
}

var priorityByCommand = func() map[string]int {
	m := make(map[string]int, len(priorityOrder))
	for i, name := range priorityOrder {
		m[name] = i
	}
	return m
}()

// PriorityFor returns the queue priority for a command name.
func PriorityFor(command string) (int, error) {
	priority, ok := priorityByCommand[command]
	if !ok {
		return 0, ErrUnknownCommand
	}
	return priority, nil
}

// Commands returns all queueable command names, lowest priority first.
func Commands() []string {
	cp := make([]string, len(priorityOrder))
	copy(cp, priorityOrder)
	return cp
}
