package flags

const Set = `set`
const Clear = `clear`
const Show = `show`
const Dump = `dump`
const Suffix = `suffix`
const InPlace = `inplace`
const ProcessSuffixed = `process-suffixed`
const Overwrite = `overwrite`
const Jobs = `jobs`
const JobsShort = `j`
const Format = `format`
const LogLevel = `loglevel`
const Verbose = `v`
const Quiet = `q`
const Plain = `p`
const Help = `h`
