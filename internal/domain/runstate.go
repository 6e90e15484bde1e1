package domain

// RunState - состояние игрового автомата планировщика.
type RunState string

const (
	StateMainMenu       RunState = "MAIN_MENU"
	StatePreRun         RunState = "PRE_RUN"
	StateAwaitingInput  RunState = "AWAITING_INPUT"
	StatePlayerTurn     RunState = "PLAYER_TURN"
	StateMonsterTurn    RunState = "MONSTER_TURN"
	StateShowInventory  RunState = "SHOW_INVENTORY"
	StateShowDropItem   RunState = "SHOW_DROP_ITEM"
	StateShowRemoveItem RunState = "SHOW_REMOVE_ITEM"
	StateShowTargeting  RunState = "SHOW_TARGETING"
	StateMapGeneration  RunState = "MAP_GENERATION"
	StateSaveGame       RunState = "SAVE_GAME"
	StateNextLevel      RunState = "NEXT_LEVEL"
	StateGameOver       RunState = "GAME_OVER"
	StateMagicMapReveal RunState = "MAGIC_MAP_REVEAL"
)
